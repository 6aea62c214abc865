package reservarepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/database"
	"decolei/internal/pkg/logger"
)

const selectReserva = `
	SELECT r.id, r.numero, r.usuario_id, r.pacote_id, r.data, r.valor_total, r.status, r.status_pagamento,
	       p.titulo, p.destino
	FROM reservas r
	JOIN pacotes p ON p.id = r.pacote_id`

const ocupacaoSQL = `
	SELECT COALESCE(SUM(vagas), 0) FROM reservas
	WHERE pacote_id = $1 AND status <> 'RECUSADO' AND id <> $2`

// ReservaRepository persiste reservas e seus viajantes. Toda verificação de
// capacidade acontece com a linha do pacote bloqueada (SELECT ... FOR UPDATE),
// o que serializa reservas concorrentes do mesmo pacote.
type ReservaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewReservaRepository cria e retorna uma nova instância do Repositório de Reservas.
func NewReservaRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *ReservaRepository {
	return &ReservaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

func scanReserva(row interface{ Scan(...interface{}) error }) (domain.Reserva, error) {
	var res domain.Reserva
	err := row.Scan(&res.ID, &res.Numero, &res.UsuarioID, &res.PacoteID, &res.Data, &res.ValorTotal,
		&res.Status, &res.StatusPagamento, &res.PacoteTitulo, &res.PacoteDestino)
	return res, err
}

type pacoteBloqueado struct {
	valor      decimal.Decimal
	capacidade int
	titulo     string
	destino    string
}

// lockPacote bloqueia a linha do pacote e devolve a ocupação atual, ignorando a reserva excluida.
func (r *ReservaRepository) lockPacote(ctx context.Context, tx *sql.Tx, pacoteID, excluida string) (pacoteBloqueado, int, error) {
	var p pacoteBloqueado
	err := tx.QueryRowContext(ctx,
		`SELECT valor, capacidade, titulo, destino FROM pacotes WHERE id = $1 FOR UPDATE`, pacoteID,
	).Scan(&p.valor, &p.capacidade, &p.titulo, &p.destino)
	if errors.Is(err, sql.ErrNoRows) {
		return p, 0, apperror.NewNotFoundError(fmt.Sprintf("Pacote com ID %s não existe.", pacoteID))
	}
	if err != nil {
		r.logger.Error("Falha ao bloquear pacote para reserva.", err, logger.Fields{"pacote_id": pacoteID})
		return p, 0, apperror.NewDBError("Falha ao bloquear pacote", err)
	}

	if excluida == "" {
		excluida = uuid.Nil.String()
	}
	var ocupadas int
	if err := tx.QueryRowContext(ctx, ocupacaoSQL, pacoteID, excluida).Scan(&ocupadas); err != nil {
		return p, 0, apperror.NewDBError("Falha ao calcular ocupação", err)
	}
	return p, ocupadas, nil
}

// Create verifica a capacidade e insere a reserva (PENDENTE) na mesma transação.
func (r *ReservaRepository) Create(ctx context.Context, nr domain.NovaReserva) (domain.Reserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	pacote, ocupadas, err := r.lockPacote(ctxTimeout, tx, nr.PacoteID, "")
	if err != nil {
		return domain.Reserva{}, err
	}

	vagas := domain.VagasPara(len(nr.Viajantes))
	if ocupadas+vagas > pacote.capacidade {
		r.logger.Warn("Capacidade do pacote excedida.", logger.Fields{
			"pacote_id":   nr.PacoteID,
			"ocupadas":    ocupadas,
			"solicitadas": vagas,
			"capacidade":  pacote.capacidade,
		})
		return domain.Reserva{}, apperror.NewCapacityExceededError(fmt.Sprintf(
			"O pacote possui %d vaga(s) disponível(is) e foram solicitadas %d.", pacote.capacidade-ocupadas, vagas))
	}

	res := domain.Reserva{
		ID:              nr.ID,
		Numero:          nr.Numero,
		UsuarioID:       nr.UsuarioID,
		PacoteID:        nr.PacoteID,
		Data:            nr.Data,
		ValorTotal:      pacote.valor.Mul(decimal.NewFromInt(int64(vagas))),
		Status:          domain.StatusPendente,
		StatusPagamento: domain.StatusPendente,
		Viajantes:       nr.Viajantes,
		PacoteTitulo:    pacote.titulo,
		PacoteDestino:   pacote.destino,
	}

	const insertSQL = `
		INSERT INTO reservas (id, numero, usuario_id, pacote_id, data, valor_total, vagas, status, status_pagamento)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := tx.ExecContext(ctxTimeout, insertSQL, res.ID, res.Numero, res.UsuarioID, res.PacoteID, res.Data,
		res.ValorTotal, vagas, res.Status, res.StatusPagamento); err != nil {
		if _, dup := database.IsUniqueViolation(err); dup {
			return domain.Reserva{}, apperror.NewConflictError("Número de reserva já utilizado. Tente novamente.")
		}
		r.logger.Error("Falha ao inserir reserva.", err, logger.Fields{"reserva_id": res.ID})
		return domain.Reserva{}, apperror.NewDBError("Falha ao inserir reserva", err)
	}

	if err := insertViajantes(ctxTimeout, tx, res.ID, res.Viajantes); err != nil {
		return domain.Reserva{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Reserva criada.", logger.Fields{"reserva_id": res.ID, "pacote_id": res.PacoteID, "vagas": vagas})
	return res, nil
}

// ReplaceViajantes substitui os viajantes de uma reserva. check recebe a reserva
// lida sob bloqueio e pode recusar a operação (dono, status).
func (r *ReservaRepository) ReplaceViajantes(ctx context.Context, id string, viajantes []domain.Viajante, check func(domain.Reserva) error) (domain.Reserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var pacoteID string
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT pacote_id FROM reservas WHERE id = $1`, id).Scan(&pacoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reserva{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao buscar reserva", err)
	}

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	// Mesma ordem de bloqueio do Create: pacote, depois reserva.
	pacote, ocupadas, err := r.lockPacote(ctxTimeout, tx, pacoteID, id)
	if err != nil {
		return domain.Reserva{}, err
	}

	res, err := scanReserva(tx.QueryRowContext(ctxTimeout, selectReserva+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reserva{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao bloquear reserva", err)
	}
	if err := check(res); err != nil {
		return domain.Reserva{}, err
	}

	vagas := domain.VagasPara(len(viajantes))
	if ocupadas+vagas > pacote.capacidade {
		return domain.Reserva{}, apperror.NewCapacityExceededError(fmt.Sprintf(
			"O pacote possui %d vaga(s) disponível(is) para esta reserva e foram solicitadas %d.", pacote.capacidade-ocupadas, vagas))
	}

	res.ValorTotal = pacote.valor.Mul(decimal.NewFromInt(int64(vagas)))
	res.Viajantes = viajantes

	if _, err := tx.ExecContext(ctxTimeout, `UPDATE reservas SET valor_total = $1, vagas = $2 WHERE id = $3`,
		res.ValorTotal, vagas, id); err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao atualizar reserva", err)
	}
	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM viajantes WHERE reserva_id = $1`, id); err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao remover viajantes", err)
	}
	if err := insertViajantes(ctxTimeout, tx, id, viajantes); err != nil {
		return domain.Reserva{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Viajantes da reserva atualizados.", logger.Fields{"reserva_id": id, "vagas": vagas})
	return res, nil
}

// UpdateStatus altera o status da reserva com a linha bloqueada. check recebe o
// status atual e pode recusar a transição.
func (r *ReservaRepository) UpdateStatus(ctx context.Context, id string, novo domain.Status, check func(atual domain.Status) error) (domain.Reserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	res, err := scanReserva(tx.QueryRowContext(ctxTimeout, selectReserva+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reserva{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao bloquear reserva", err)
	}
	if err := check(res.Status); err != nil {
		return domain.Reserva{}, err
	}

	if _, err := tx.ExecContext(ctxTimeout, `UPDATE reservas SET status = $1 WHERE id = $2`, novo, id); err != nil {
		r.logger.Error("Falha ao atualizar status da reserva.", err, logger.Fields{"reserva_id": id})
		return domain.Reserva{}, apperror.NewDBError("Falha ao atualizar status", err)
	}

	res.Viajantes, err = loadViajantes(ctxTimeout, tx, id)
	if err != nil {
		return domain.Reserva{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Reserva{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Status da reserva alterado.", logger.Fields{"reserva_id": id, "de": res.Status, "para": novo})
	res.Status = novo
	return res, nil
}

// FindByID busca a reserva com seus viajantes.
func (r *ReservaRepository) FindByID(ctx context.Context, id string) (domain.Reserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := scanReserva(r.DB.QueryRowContext(ctxTimeout, selectReserva+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reserva{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar reserva.", err, logger.Fields{"reserva_id": id})
		return domain.Reserva{}, apperror.NewDBError("Falha ao buscar reserva", err)
	}

	if res.Viajantes, err = loadViajantes(ctxTimeout, r.DB, id); err != nil {
		return domain.Reserva{}, err
	}
	return res, nil
}

// List devolve as reservas, mais recentes primeiro. usuarioID vazio lista todas.
func (r *ReservaRepository) List(ctx context.Context, usuarioID string) ([]domain.Reserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := selectReserva
	var args []interface{}
	if usuarioID != "" {
		query += ` WHERE r.usuario_id = $1`
		args = append(args, usuarioID)
	}
	query += ` ORDER BY r.data DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar reservas.", err)
		return nil, apperror.NewDBError("Falha ao listar reservas", err)
	}
	defer rows.Close()

	reservas := []domain.Reserva{}
	for rows.Next() {
		res, err := scanReserva(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler reserva", err)
		}
		reservas = append(reservas, res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar reservas", err)
	}
	rows.Close()

	for i := range reservas {
		if reservas[i].Viajantes, err = loadViajantes(ctxTimeout, r.DB, reservas[i].ID); err != nil {
			return nil, err
		}
	}
	return reservas, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func insertViajantes(ctx context.Context, q execQuerier, reservaID string, viajantes []domain.Viajante) error {
	for i, v := range viajantes {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO viajantes (id, reserva_id, nome, documento, posicao) VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), reservaID, v.Nome, v.Documento, i,
		); err != nil {
			return apperror.NewDBError("Falha ao inserir viajante", err)
		}
	}
	return nil
}

func loadViajantes(ctx context.Context, q execQuerier, reservaID string) ([]domain.Viajante, error) {
	rows, err := q.QueryContext(ctx, `SELECT nome, documento FROM viajantes WHERE reserva_id = $1 ORDER BY posicao`, reservaID)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao buscar viajantes", err)
	}
	defer rows.Close()

	viajantes := []domain.Viajante{}
	for rows.Next() {
		var v domain.Viajante
		if err := rows.Scan(&v.Nome, &v.Documento); err != nil {
			return nil, apperror.NewDBError("Falha ao ler viajante", err)
		}
		viajantes = append(viajantes, v)
	}
	return viajantes, rows.Err()
}
