package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/workflow/domain"
)

type MySQLUserDirectory struct {
	db *sqlx.DB
}

func NewMySQLUserDirectory(db *sqlx.DB) *MySQLUserDirectory {
	return &MySQLUserDirectory{db: db}
}

func (r *MySQLUserDirectory) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT id, name, manager_id, is_active FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
