package pagamentorepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/database"
	"decolei/internal/pkg/logger"
)

const selectPagamento = `
	SELECT id, reserva_id, forma, status, valor, parcelas, comprovante_url, data
	FROM pagamentos`

// PagamentoRepository persiste pagamentos. Toda escrita bloqueia primeiro a
// reserva e só depois o pagamento, sempre nessa ordem.
type PagamentoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewPagamentoRepository cria e retorna uma nova instância do Repositório de Pagamentos.
func NewPagamentoRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *PagamentoRepository {
	return &PagamentoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

func scanPagamento(row interface{ Scan(...interface{}) error }) (domain.Pagamento, error) {
	var p domain.Pagamento
	err := row.Scan(&p.ID, &p.ReservaID, &p.Metodo, &p.Status, &p.Valor, &p.Parcelas, &p.ComprovanteURL, &p.Data)
	return p, err
}

func (r *PagamentoRepository) lockReserva(ctx context.Context, tx *sql.Tx, reservaID string) (domain.Reserva, error) {
	var res domain.Reserva
	err := tx.QueryRowContext(ctx, `
		SELECT id, numero, usuario_id, pacote_id, valor_total, status, status_pagamento
		FROM reservas WHERE id = $1 FOR UPDATE`, reservaID,
	).Scan(&res.ID, &res.Numero, &res.UsuarioID, &res.PacoteID, &res.ValorTotal, &res.Status, &res.StatusPagamento)
	if errors.Is(err, sql.ErrNoRows) {
		return res, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não existe.", reservaID))
	}
	if err != nil {
		r.logger.Error("Falha ao bloquear reserva para pagamento.", err, logger.Fields{"reserva_id": reservaID})
		return res, apperror.NewDBError("Falha ao bloquear reserva", err)
	}
	return res, nil
}

func hasAprovado(ctx context.Context, tx *sql.Tx, reservaID, exceto string) (bool, error) {
	var existe bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM pagamentos WHERE reserva_id = $1 AND status = 'APROVADO' AND id::text <> $2)`,
		reservaID, exceto,
	).Scan(&existe)
	if err != nil {
		return false, apperror.NewDBError("Falha ao verificar pagamentos aprovados", err)
	}
	return existe, nil
}

// Create registra um pagamento. Com a reserva bloqueada: aplica check, recusa
// pagamento em dobro e, se np.AprovarReserva, aprova a reserva na mesma transação.
func (r *PagamentoRepository) Create(ctx context.Context, np domain.NovoPagamento, check func(domain.Reserva) error) (domain.Pagamento, domain.Reserva, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	p := np.Pagamento
	res, err := r.lockReserva(ctxTimeout, tx, p.ReservaID)
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, err
	}
	if err := check(res); err != nil {
		return domain.Pagamento{}, domain.Reserva{}, err
	}

	pago, err := hasAprovado(ctxTimeout, tx, res.ID, "")
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, err
	}
	if pago {
		r.logger.Warn("Tentativa de pagamento em dobro.", logger.Fields{"reserva_id": res.ID, "user_id": np.UsuarioID})
		return domain.Pagamento{}, domain.Reserva{}, apperror.NewConflictError("Esta reserva já possui um pagamento aprovado.")
	}

	const insertSQL = `
		INSERT INTO pagamentos (id, reserva_id, forma, status, valor, parcelas, comprovante_url, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctxTimeout, insertSQL, p.ID, p.ReservaID, p.Metodo, p.Status, p.Valor,
		p.Parcelas, p.ComprovanteURL, p.Data); err != nil {
		if _, dup := database.IsUniqueViolation(err); dup {
			return domain.Pagamento{}, domain.Reserva{}, apperror.NewConflictError("Esta reserva já possui um pagamento aprovado.")
		}
		r.logger.Error("Falha ao inserir pagamento.", err, logger.Fields{"pagamento_id": p.ID})
		return domain.Pagamento{}, domain.Reserva{}, apperror.NewDBError("Falha ao inserir pagamento", err)
	}

	if np.AprovarReserva {
		if res, err = aprovarReserva(ctxTimeout, tx, res); err != nil {
			return domain.Pagamento{}, domain.Reserva{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Pagamento{}, domain.Reserva{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Pagamento registrado.", logger.Fields{
		"pagamento_id": p.ID,
		"reserva_id":   p.ReservaID,
		"metodo":       p.Metodo,
		"status":       p.Status,
	})
	return p, res, nil
}

// aprovarReserva marca o espelho de pagamento como APROVADO e aprova a reserva
// se ela ainda estiver PENDENTE.
func aprovarReserva(ctx context.Context, tx *sql.Tx, res domain.Reserva) (domain.Reserva, error) {
	if res.Status == domain.StatusPendente {
		res.Status = domain.StatusAprovado
	}
	res.StatusPagamento = domain.StatusAprovado

	if _, err := tx.ExecContext(ctx, `UPDATE reservas SET status = $1, status_pagamento = $2 WHERE id = $3`,
		res.Status, res.StatusPagamento, res.ID); err != nil {
		return res, apperror.NewDBError("Falha ao aprovar reserva", err)
	}
	return res, nil
}

// SettleBoleto compensa um boleto numa transação nova. Devolve settled=false,
// sem alterar nada, se o pagamento não estiver mais PENDENTE. Se outro pagamento
// da reserva já foi aprovado, o boleto é recusado.
func (r *PagamentoRepository) SettleBoleto(ctx context.Context, pagamentoID string) (domain.Pagamento, domain.Reserva, bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var reservaID string
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT reserva_id FROM pagamentos WHERE id = $1`, pagamentoID).Scan(&reservaID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pagamento{}, domain.Reserva{}, false, apperror.NewNotFoundError(fmt.Sprintf("Pagamento com ID %s não existe.", pagamentoID))
	}
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, apperror.NewDBError("Falha ao buscar pagamento", err)
	}

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	res, err := r.lockReserva(ctxTimeout, tx, reservaID)
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, err
	}
	p, err := scanPagamento(tx.QueryRowContext(ctxTimeout, selectPagamento+` WHERE id = $1 FOR UPDATE`, pagamentoID))
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, apperror.NewDBError("Falha ao bloquear pagamento", err)
	}

	if p.Status != domain.StatusPendente {
		r.logger.Info("Boleto já resolvido. Nada a compensar.", logger.Fields{"pagamento_id": p.ID, "status": p.Status})
		return p, res, false, nil
	}

	pago, err := hasAprovado(ctxTimeout, tx, reservaID, p.ID)
	if err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, err
	}
	if pago {
		p.Status = domain.StatusRecusado
	} else {
		p.Status = domain.StatusAprovado
	}

	if _, err := tx.ExecContext(ctxTimeout, `UPDATE pagamentos SET status = $1 WHERE id = $2`, p.Status, p.ID); err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, apperror.NewDBError("Falha ao compensar boleto", err)
	}
	if p.Status == domain.StatusAprovado {
		if res, err = aprovarReserva(ctxTimeout, tx, res); err != nil {
			return domain.Pagamento{}, domain.Reserva{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Pagamento{}, domain.Reserva{}, false, apperror.NewDBError("Falha ao commitar transação", err)
	}

	if p.Status == domain.StatusRecusado {
		r.logger.Warn("Boleto recusado: a reserva já possui outro pagamento aprovado.", logger.Fields{"pagamento_id": p.ID, "reserva_id": reservaID})
		return p, res, false, nil
	}

	r.logger.Info("Boleto compensado.", logger.Fields{"pagamento_id": p.ID, "reserva_id": reservaID})
	return p, res, true, nil
}

// FindStatus devolve o status do pagamento e o espelho na reserva.
func (r *PagamentoRepository) FindStatus(ctx context.Context, pagamentoID string) (domain.StatusPagamentoResponse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var out domain.StatusPagamentoResponse
	err := r.DB.QueryRowContext(ctxTimeout, `
		SELECT p.id, p.status, r.id, r.status_pagamento, r.status
		FROM pagamentos p
		JOIN reservas r ON r.id = p.reserva_id
		WHERE p.id = $1`, pagamentoID,
	).Scan(&out.PagamentoID, &out.StatusPagamento, &out.ReservaID, &out.StatusPagamentoReserva, &out.StatusReserva)
	if errors.Is(err, sql.ErrNoRows) {
		return out, apperror.NewNotFoundError(fmt.Sprintf("Pagamento com ID %s não existe.", pagamentoID))
	}
	if err != nil {
		r.logger.Error("Falha ao consultar status do pagamento.", err, logger.Fields{"pagamento_id": pagamentoID})
		return out, apperror.NewDBError("Falha ao consultar pagamento", err)
	}
	return out, nil
}

// UpdateStatus é a alteração manual (ADMIN) do status de um pagamento. Aprovar
// aprova também a reserva; nos demais casos o espelho da reserva continua
// APROVADO enquanto houver outro pagamento aprovado.
func (r *PagamentoRepository) UpdateStatus(ctx context.Context, pagamentoID string, novo domain.Status) (domain.Pagamento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var reservaID string
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT reserva_id FROM pagamentos WHERE id = $1`, pagamentoID).Scan(&reservaID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pagamento{}, apperror.NewNotFoundError(fmt.Sprintf("Pagamento com ID %s não existe.", pagamentoID))
	}
	if err != nil {
		return domain.Pagamento{}, apperror.NewDBError("Falha ao buscar pagamento", err)
	}

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Pagamento{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	res, err := r.lockReserva(ctxTimeout, tx, reservaID)
	if err != nil {
		return domain.Pagamento{}, err
	}
	p, err := scanPagamento(tx.QueryRowContext(ctxTimeout, selectPagamento+` WHERE id = $1 FOR UPDATE`, pagamentoID))
	if err != nil {
		return domain.Pagamento{}, apperror.NewDBError("Falha ao bloquear pagamento", err)
	}

	outroAprovado, err := hasAprovado(ctxTimeout, tx, reservaID, p.ID)
	if err != nil {
		return domain.Pagamento{}, err
	}
	if novo == domain.StatusAprovado && outroAprovado {
		return domain.Pagamento{}, apperror.NewConflictError("A reserva já possui outro pagamento aprovado.")
	}

	if _, err := tx.ExecContext(ctxTimeout, `UPDATE pagamentos SET status = $1 WHERE id = $2`, novo, p.ID); err != nil {
		return domain.Pagamento{}, apperror.NewDBError("Falha ao atualizar pagamento", err)
	}

	if novo == domain.StatusAprovado {
		if _, err := aprovarReserva(ctxTimeout, tx, res); err != nil {
			return domain.Pagamento{}, err
		}
	} else {
		espelho := novo
		if outroAprovado {
			espelho = domain.StatusAprovado
		}
		if _, err := tx.ExecContext(ctxTimeout, `UPDATE reservas SET status_pagamento = $1 WHERE id = $2`, espelho, reservaID); err != nil {
			return domain.Pagamento{}, apperror.NewDBError("Falha ao atualizar reserva", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Pagamento{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Status do pagamento alterado manualmente.", logger.Fields{"pagamento_id": p.ID, "de": p.Status, "para": novo})
	p.Status = novo
	return p, nil
}
