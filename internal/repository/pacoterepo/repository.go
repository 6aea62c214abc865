package pacoterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/cache"
	"decolei/internal/pkg/logger"
)

// pacoteCacheKey guarda os dados estáticos do pacote. A ocupação nunca é cacheada.
const pacoteCacheKey = "pacote:%s"

const selectPacote = `
	SELECT id, titulo, descricao, destino, valor, data_inicio, data_fim, capacidade,
	       usuario_id, video_url, created_at, updated_at
	FROM pacotes`

// ocupacaoSQL soma as vagas das reservas que não foram recusadas.
const ocupacaoSQL = `
	SELECT COALESCE(SUM(vagas), 0) FROM reservas
	WHERE pacote_id = $1 AND status <> 'RECUSADO'`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PacoteRepository acessa o catálogo de pacotes no PostgreSQL, com cache-aside no Redis.
type PacoteRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewPacoteRepository cria e retorna uma nova instância do Repositório.
func NewPacoteRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *PacoteRepository {
	return &PacoteRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

func scanPacote(row interface{ Scan(...interface{}) error }) (domain.Pacote, error) {
	var p domain.Pacote
	err := row.Scan(&p.ID, &p.Titulo, &p.Descricao, &p.Destino, &p.Valor, &p.DataInicio, &p.DataFim,
		&p.Capacidade, &p.UsuarioID, &p.VideoURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create persiste um novo pacote e suas imagens numa transação.
func (r *PacoteRepository) Create(ctx context.Context, p domain.Pacote) (domain.Pacote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Pacote{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const insertSQL = `
		INSERT INTO pacotes (id, titulo, descricao, destino, valor, data_inicio, data_fim, capacidade,
		                     usuario_id, video_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.ExecContext(ctxTimeout, insertSQL, p.ID, p.Titulo, p.Descricao, p.Destino, p.Valor,
		p.DataInicio, p.DataFim, p.Capacidade, p.UsuarioID, p.VideoURL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir pacote no DB.", err, logger.Fields{"pacote_id": p.ID})
		return domain.Pacote{}, apperror.NewDBError("Falha ao inserir pacote", err)
	}

	if p.Imagens, err = r.replaceImagens(ctxTimeout, tx, p.ID, p.Imagens); err != nil {
		return domain.Pacote{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Pacote{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Pacote criado com sucesso.", logger.Fields{"pacote_id": p.ID, "destino": p.Destino})
	return p, nil
}

// FindByID busca um pacote pelo ID. Os dados estáticos seguem a estratégia
// Cache-Aside; a ocupação é sempre lida do banco.
func (r *PacoteRepository) FindByID(ctx context.Context, id string) (domain.Pacote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(pacoteCacheKey, id)
	p, hit := r.fromCache(ctxTimeout, key)

	if !hit {
		var err error
		p, err = scanPacote(r.DB.QueryRowContext(ctxTimeout, selectPacote+` WHERE id = $1`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Pacote{}, apperror.NewNotFoundError(fmt.Sprintf("Pacote com ID %s não existe.", id))
		}
		if err != nil {
			r.logger.Error("Falha ao buscar pacote no DB.", err, logger.Fields{"pacote_id": id})
			return domain.Pacote{}, apperror.NewDBError("Falha ao buscar pacote", err)
		}

		imagens, err := r.loadImagens(ctxTimeout, r.DB, []string{id})
		if err != nil {
			return domain.Pacote{}, err
		}
		p.Imagens = imagens[id]

		r.toCache(ctxTimeout, key, p)
	}

	if err := r.DB.QueryRowContext(ctxTimeout, ocupacaoSQL, id).Scan(&p.VagasOcupadas); err != nil {
		r.logger.Error("Falha ao calcular ocupação do pacote.", err, logger.Fields{"pacote_id": id})
		return domain.Pacote{}, apperror.NewDBError("Falha ao calcular ocupação", err)
	}

	return p, nil
}

func (r *PacoteRepository) fromCache(ctx context.Context, key string) (domain.Pacote, bool) {
	var p domain.Pacote
	cached, err := r.Cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			r.logger.Warn("Falha ao ler do cache Redis.", logger.Fields{"key": key, "error": err.Error()})
		}
		return p, false
	}
	if err := json.Unmarshal([]byte(cached), &p); err != nil {
		r.logger.Warn("Entrada de cache corrompida. Buscando no DB.", logger.Fields{"key": key})
		return p, false
	}
	return p, true
}

func (r *PacoteRepository) toCache(ctx context.Context, key string, p domain.Pacote) {
	p.VagasOcupadas = 0
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.CacheTTL); err != nil {
		r.logger.Warn("Falha ao gravar no cache Redis.", logger.Fields{"key": key, "error": err.Error()})
	}
}

func (r *PacoteRepository) invalidate(ctx context.Context, id string) {
	if err := r.Cache.Delete(ctx, fmt.Sprintf(pacoteCacheKey, id)); err != nil {
		r.logger.Warn("Falha ao invalidar cache do pacote.", logger.Fields{"pacote_id": id, "error": err.Error()})
	}
}

// List devolve os pacotes que atendem ao filtro, com imagens e ocupação.
func (r *PacoteRepository) List(ctx context.Context, f domain.PacoteFilter) ([]domain.Pacote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Destino != "" {
		add("strpos(LOWER(p.destino), LOWER($%d)) > 0", f.Destino)
	}
	if f.PrecoMin != nil {
		add("p.valor >= $%d", *f.PrecoMin)
	}
	if f.PrecoMax != nil {
		add("p.valor <= $%d", *f.PrecoMax)
	}
	if f.DataInicio != nil {
		add("p.data_inicio >= $%d", *f.DataInicio)
	}
	if f.DataFim != nil {
		add("p.data_fim <= $%d", *f.DataFim)
	}

	query := `
		SELECT p.id, p.titulo, p.descricao, p.destino, p.valor, p.data_inicio, p.data_fim, p.capacidade,
		       p.usuario_id, p.video_url, p.created_at, p.updated_at,
		       COALESCE((SELECT SUM(r.vagas) FROM reservas r WHERE r.pacote_id = p.id AND r.status <> 'RECUSADO'), 0)
		FROM pacotes p`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.data_inicio, p.titulo"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar pacotes.", err)
		return nil, apperror.NewDBError("Falha ao listar pacotes", err)
	}
	defer rows.Close()

	pacotes := []domain.Pacote{}
	ids := []string{}
	for rows.Next() {
		var p domain.Pacote
		if err := rows.Scan(&p.ID, &p.Titulo, &p.Descricao, &p.Destino, &p.Valor, &p.DataInicio, &p.DataFim,
			&p.Capacidade, &p.UsuarioID, &p.VideoURL, &p.CreatedAt, &p.UpdatedAt, &p.VagasOcupadas); err != nil {
			return nil, apperror.NewDBError("Falha ao ler pacote", err)
		}
		pacotes = append(pacotes, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar pacotes", err)
	}

	imagens, err := r.loadImagens(ctxTimeout, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for i := range pacotes {
		pacotes[i].Imagens = imagens[pacotes[i].ID]
	}

	return pacotes, nil
}

// Update bloqueia a linha do pacote, aplica a mutação e grava. A ocupação é lida
// dentro do mesmo bloqueio, então a mutação pode recusar capacidade abaixo dela.
func (r *PacoteRepository) Update(ctx context.Context, id string, mutate func(p *domain.Pacote) error, novasImagens []string) (domain.Pacote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Pacote{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	p, err := scanPacote(tx.QueryRowContext(ctxTimeout, selectPacote+` WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pacote{}, apperror.NewNotFoundError(fmt.Sprintf("Pacote com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Pacote{}, apperror.NewDBError("Falha ao bloquear pacote", err)
	}
	if err := tx.QueryRowContext(ctxTimeout, ocupacaoSQL, id).Scan(&p.VagasOcupadas); err != nil {
		return domain.Pacote{}, apperror.NewDBError("Falha ao calcular ocupação", err)
	}

	if err := mutate(&p); err != nil {
		return domain.Pacote{}, err
	}
	p.UpdatedAt = time.Now()

	const updateSQL = `
		UPDATE pacotes
		SET titulo = $1, descricao = $2, destino = $3, valor = $4, data_inicio = $5, data_fim = $6,
		    capacidade = $7, video_url = $8, updated_at = $9
		WHERE id = $10`
	if _, err := tx.ExecContext(ctxTimeout, updateSQL, p.Titulo, p.Descricao, p.Destino, p.Valor,
		p.DataInicio, p.DataFim, p.Capacidade, p.VideoURL, p.UpdatedAt, id); err != nil {
		r.logger.Error("Falha ao atualizar pacote.", err, logger.Fields{"pacote_id": id})
		return domain.Pacote{}, apperror.NewDBError("Falha ao atualizar pacote", err)
	}

	if novasImagens != nil {
		imgs := make([]domain.Imagem, 0, len(novasImagens))
		for _, u := range novasImagens {
			imgs = append(imgs, domain.Imagem{URL: u})
		}
		if p.Imagens, err = r.replaceImagens(ctxTimeout, tx, id, imgs); err != nil {
			return domain.Pacote{}, err
		}
	} else {
		imagens, err := r.loadImagens(ctxTimeout, tx, []string{id})
		if err != nil {
			return domain.Pacote{}, err
		}
		p.Imagens = imagens[id]
	}

	if err := tx.Commit(); err != nil {
		return domain.Pacote{}, apperror.NewDBError("Falha ao commitar transação", err)
	}
	r.invalidate(ctx, id)

	r.logger.Info("Pacote atualizado com sucesso.", logger.Fields{"pacote_id": id})
	return p, nil
}

// Delete remove um pacote sem reservas.
func (r *PacoteRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctxTimeout, `SELECT id FROM pacotes WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFoundError(fmt.Sprintf("Pacote com ID %s não existe.", id))
	}
	if err != nil {
		return apperror.NewDBError("Falha ao bloquear pacote", err)
	}

	var reservas int
	if err := tx.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM reservas WHERE pacote_id = $1`, id).Scan(&reservas); err != nil {
		return apperror.NewDBError("Falha ao contar reservas do pacote", err)
	}
	if reservas > 0 {
		return apperror.NewConflictError("Não é possível excluir um pacote que possui reservas.")
	}

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM pacotes WHERE id = $1`, id); err != nil {
		r.logger.Error("Falha ao excluir pacote.", err, logger.Fields{"pacote_id": id})
		return apperror.NewDBError("Falha ao excluir pacote", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao commitar transação", err)
	}
	r.invalidate(ctx, id)

	r.logger.Info("Pacote excluído.", logger.Fields{"pacote_id": id})
	return nil
}

func (r *PacoteRepository) replaceImagens(ctx context.Context, q querier, pacoteID string, imagens []domain.Imagem) ([]domain.Imagem, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM imagens WHERE pacote_id = $1`, pacoteID); err != nil {
		return nil, apperror.NewDBError("Falha ao remover imagens", err)
	}

	out := make([]domain.Imagem, 0, len(imagens))
	for _, img := range imagens {
		img.ID = uuid.NewString()
		img.PacoteID = pacoteID
		if _, err := q.ExecContext(ctx, `INSERT INTO imagens (id, pacote_id, url) VALUES ($1, $2, $3)`,
			img.ID, img.PacoteID, img.URL); err != nil {
			return nil, apperror.NewDBError("Falha ao inserir imagem", err)
		}
		out = append(out, img)
	}
	return out, nil
}

func (r *PacoteRepository) loadImagens(ctx context.Context, q querier, pacoteIDs []string) (map[string][]domain.Imagem, error) {
	out := make(map[string][]domain.Imagem, len(pacoteIDs))
	if len(pacoteIDs) == 0 {
		return out, nil
	}
	for _, id := range pacoteIDs {
		out[id] = []domain.Imagem{}
	}

	placeholders := make([]string, len(pacoteIDs))
	args := make([]interface{}, len(pacoteIDs))
	for i, id := range pacoteIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, pacote_id, url FROM imagens WHERE pacote_id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY url`, args...)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao buscar imagens", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.Imagem
		if err := rows.Scan(&img.ID, &img.PacoteID, &img.URL); err != nil {
			return nil, apperror.NewDBError("Falha ao ler imagem", err)
		}
		out[img.PacoteID] = append(out[img.PacoteID], img)
	}
	return out, rows.Err()
}
