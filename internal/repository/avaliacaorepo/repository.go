package avaliacaorepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/database"
	"decolei/internal/pkg/logger"
)

const selectAvaliacao = `
	SELECT a.id, a.usuario_id, a.pacote_id, a.nota, a.comentario, a.data, a.aprovada,
	       u.nome_completo, p.titulo, p.destino
	FROM avaliacoes a
	JOIN usuarios u ON u.id = a.usuario_id
	JOIN pacotes p ON p.id = a.pacote_id`

// AvaliacaoRepository persiste avaliações de pacotes.
type AvaliacaoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAvaliacaoRepository cria e retorna uma nova instância do Repositório de Avaliações.
func NewAvaliacaoRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *AvaliacaoRepository {
	return &AvaliacaoRepository{DB: db, DBTimeout: dbTimeout, logger: log}
}

func scanAvaliacao(row interface{ Scan(...interface{}) error }) (domain.Avaliacao, error) {
	var a domain.Avaliacao
	err := row.Scan(&a.ID, &a.UsuarioID, &a.PacoteID, &a.Nota, &a.Comentario, &a.Data, &a.Aprovada,
		&a.UsuarioNome, &a.PacoteTitulo, &a.PacoteDestino)
	return a, err
}

// Create insere a avaliação. A constraint (usuario_id, pacote_id) vira Conflict.
func (r *AvaliacaoRepository) Create(ctx context.Context, a domain.Avaliacao) (domain.Avaliacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout, `
		INSERT INTO avaliacoes (id, usuario_id, pacote_id, nota, comentario, data, aprovada)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UsuarioID, a.PacoteID, a.Nota, a.Comentario, a.Data, a.Aprovada)
	if err != nil {
		if _, dup := database.IsUniqueViolation(err); dup {
			return domain.Avaliacao{}, apperror.NewConflictError("Você já avaliou este pacote.")
		}
		r.logger.Error("Falha ao inserir avaliação.", err, logger.Fields{"user_id": a.UsuarioID, "pacote_id": a.PacoteID})
		return domain.Avaliacao{}, apperror.NewDBError("Falha ao inserir avaliação", err)
	}

	r.logger.Info("Avaliação registrada.", logger.Fields{"avaliacao_id": a.ID, "pacote_id": a.PacoteID})
	return a, nil
}

// ExistsByUsuarioPacote informa se o usuário já avaliou o pacote.
func (r *AvaliacaoRepository) ExistsByUsuarioPacote(ctx context.Context, usuarioID, pacoteID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var existe bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM avaliacoes WHERE usuario_id = $1 AND pacote_id = $2)`, usuarioID, pacoteID,
	).Scan(&existe)
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar avaliação existente", err)
	}
	return existe, nil
}

// HasReservaElegivel informa se o usuário tem reserva do pacote em algum dos status.
func (r *AvaliacaoRepository) HasReservaElegivel(ctx context.Context, usuarioID, pacoteID string, status []domain.Status) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	valores := make([]string, len(status))
	for i, s := range status {
		valores[i] = string(s)
	}

	var existe bool
	err := r.DB.QueryRowContext(ctxTimeout, `
		SELECT EXISTS (
			SELECT 1 FROM reservas
			WHERE usuario_id = $1 AND pacote_id = $2 AND status = ANY($3)
		)`, usuarioID, pacoteID, pq.Array(valores),
	).Scan(&existe)
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar reserva elegível", err)
	}
	return existe, nil
}

// FindByID busca uma avaliação.
func (r *AvaliacaoRepository) FindByID(ctx context.Context, id string) (domain.Avaliacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	a, err := scanAvaliacao(r.DB.QueryRowContext(ctxTimeout, selectAvaliacao+` WHERE a.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Avaliacao{}, apperror.NewNotFoundError(fmt.Sprintf("Avaliação com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Avaliacao{}, apperror.NewDBError("Falha ao buscar avaliação", err)
	}
	return a, nil
}

// Approve marca a avaliação como aprovada. Conflict se ela já estava aprovada.
func (r *AvaliacaoRepository) Approve(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var aprovada bool
	err = tx.QueryRowContext(ctxTimeout, `SELECT aprovada FROM avaliacoes WHERE id = $1 FOR UPDATE`, id).Scan(&aprovada)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFoundError(fmt.Sprintf("Avaliação com ID %s não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao bloquear avaliação.", err, logger.Fields{"avaliacao_id": id})
		return apperror.NewDBError("Falha ao buscar avaliação", err)
	}
	if aprovada {
		return apperror.NewConflictError("Esta avaliação já foi aprovada.")
	}

	if _, err := tx.ExecContext(ctxTimeout, `UPDATE avaliacoes SET aprovada = TRUE WHERE id = $1`, id); err != nil {
		return apperror.NewDBError("Falha ao aprovar avaliação", err)
	}
	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Avaliação aprovada.", logger.Fields{"avaliacao_id": id})
	return nil
}

// Delete remove a avaliação definitivamente.
func (r *AvaliacaoRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM avaliacoes WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("Falha ao excluir avaliação", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Avaliação com ID %s não existe.", id))
	}

	r.logger.Info("Avaliação rejeitada e excluída.", logger.Fields{"avaliacao_id": id})
	return nil
}

// List devolve as avaliações que atendem ao filtro, mais recentes primeiro.
func (r *AvaliacaoRepository) List(ctx context.Context, f domain.AvaliacaoFilter) ([]domain.Avaliacao, error) {
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
	if f.Aprovada != nil {
		add("a.aprovada = $%d", *f.Aprovada)
	}
	if f.Destino != "" {
		add("strpos(LOWER(p.destino), LOWER($%d)) > 0", f.Destino)
	}
	if f.PacoteID != "" {
		add("a.pacote_id = $%d", f.PacoteID)
	}
	if f.UsuarioID != "" {
		add("a.usuario_id = $%d", f.UsuarioID)
	}

	query := selectAvaliacao
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.data DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar avaliações.", err)
		return nil, apperror.NewDBError("Falha ao listar avaliações", err)
	}
	defer rows.Close()

	out := []domain.Avaliacao{}
	for rows.Next() {
		a, err := scanAvaliacao(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler avaliação", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
