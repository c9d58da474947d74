package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/online-store/internal/cfg"
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const userColumns = `id, username, password_hash, role, created_at`

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
	cfg  *cfg.PGDBCfg
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter, cfg *cfg.PGDBCfg) *UserRepo {
	return &UserRepo{
		pool: pool,
		conv: conv,
		cfg:  cfg,
	}
}

// Create вставляет пользователя; занятое имя превращается в e.ErrUsernameTaken.
// Дубликат ловится ограничением уникальности, а не предварительным SELECT:
// два конкурирующих register с одним именем не могут оба пройти.
func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.QueryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	model, err := scanUser(u.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, string(user.Role)))
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(user.Username, e.ErrUsernameTaken)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return u.conv.ToEntity(model), nil
}

// GetByUsername возвращает пользователя либо e.ErrUserNotFound.
func (u *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.QueryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	model, err := scanUser(u.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(username, e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return u.conv.ToEntity(model), nil
}

// GetByID возвращает пользователя либо e.ErrUserNotFound.
func (u *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.QueryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	model, err := scanUser(u.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("user %d", id), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return u.conv.ToEntity(model), nil
}

func scanUser(row pgx.Row) (*converter.UserModel, error) {
	var model converter.UserModel
	err := row.Scan(&model.ID, &model.Username, &model.PasswordHash, &model.Role, &model.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &model, nil
}
