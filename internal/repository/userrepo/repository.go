package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/database"
	"decolei/internal/pkg/logger"
)

const selectUser = `
	SELECT id, email, password_hash, nome_completo, documento, telefone, perfil, created_at, updated_at
	FROM usuarios`

// UserRepository persiste usuários no PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

func scanUser(row interface{ Scan(...interface{}) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.NomeCompleto, &u.Documento, &u.Telefone,
		&u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// duplicidade traduz as constraints UNIQUE de usuarios para um ConflictError.
func duplicidade(err error) (error, bool) {
	constraint, ok := database.IsUniqueViolation(err)
	if !ok {
		return nil, false
	}
	switch constraint {
	case "usuarios_email_key":
		return apperror.NewConflictError("Já existe um usuário com este email."), true
	case "usuarios_documento_key":
		return apperror.NewConflictError("Já existe um usuário com este documento."), true
	default:
		return apperror.NewConflictError("Usuário duplicado."), true
	}
}

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", logger.Fields{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout, `
		INSERT INTO usuarios (id, email, password_hash, nome_completo, documento, telefone, perfil, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Email, user.PasswordHash, user.NomeCompleto, user.Documento, user.Telefone,
		user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if conflict, ok := duplicidade(err); ok {
			return domain.User{}, conflict
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", logger.Fields{"user_id": user.ID, "perfil": user.Role})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail (sem diferenciar caixa).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, `WHERE LOWER(email) = LOWER($1)`, email, fmt.Sprintf("Usuário com email '%s' não encontrado", email))
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id, fmt.Sprintf("Usuário com ID %s não encontrado", id))
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg interface{}, notFound string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, selectUser+" "+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(notFound)
		}
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}

// List devolve os usuários que atendem ao filtro, ordenados pelo nome.
func (r *UserRepository) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	contem := func(coluna, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("strpos(LOWER(%s), LOWER($%d)) > 0", coluna, len(args)))
	}
	contem("nome_completo", f.Nome)
	contem("email", f.Email)
	contem("documento", f.Documento)

	query := selectUser
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY nome_completo"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar usuários.", err)
		return nil, apperror.NewDBError("Falha ao listar usuários", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler usuário", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update grava os dados cadastrais e o perfil.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.UpdatedAt = time.Now()
	result, err := r.DB.ExecContext(ctxTimeout, `
		UPDATE usuarios
		SET email = $1, nome_completo = $2, documento = $3, telefone = $4, perfil = $5, updated_at = $6
		WHERE id = $7`,
		user.Email, user.NomeCompleto, user.Documento, user.Telefone, user.Role, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if conflict, ok := duplicidade(err); ok {
			return domain.User{}, conflict
		}
		r.logger.Error("Falha ao atualizar usuário.", err, logger.Fields{"user_id": user.ID})
		return domain.User{}, apperror.NewDBError("Falha ao atualizar usuário", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado", user.ID))
	}

	r.logger.Info("Usuário atualizado.", logger.Fields{"user_id": user.ID, "perfil": user.Role})
	return user, nil
}

// UpdatePassword troca o hash de senha.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE usuarios SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now(), id,
	); err != nil {
		r.logger.Error("Falha ao atualizar senha.", err, logger.Fields{"user_id": id})
		return apperror.NewDBError("Falha ao atualizar senha", err)
	}
	return nil
}
