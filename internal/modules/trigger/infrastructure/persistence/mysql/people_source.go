package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
)

type PeopleSource struct {
	db *sqlx.DB
}

func NewPeopleSource(db *sqlx.DB) *PeopleSource {
	return &PeopleSource{db: db}
}

func (s *PeopleSource) ActivePeople(ctx context.Context) ([]domain.Person, error) {
	query := `
		SELECT id, name, birth_date, joining_date
		FROM users
		WHERE is_active = TRUE
		ORDER BY id ASC
	`
	people := []domain.Person{}
	if err := s.db.SelectContext(ctx, &people, query); err != nil {
		return nil, err
	}
	return people, nil
}
