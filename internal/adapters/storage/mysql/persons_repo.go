package mysql

import (
	"context"
	"database/sql"
	"strings"

	"pet-municipal-registry/internal/domain/persons"
)

type PersonsRepo struct {
	db *sql.DB
}

func NewPersonsRepo(db *sql.DB) *PersonsRepo {
	return &PersonsRepo{db: db}
}

func (r *PersonsRepo) Create(ctx context.Context, p persons.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO persons (
			id, name, document, phone, email, role,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?)
	`,
		p.ID,
		p.Name,
		p.Document,
		p.Phone,
		p.Email,
		string(p.Role),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PersonsRepo) GetByID(ctx context.Context, id string) (persons.Person, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return persons.Person{}, persons.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, document, phone, email, role, created_at, updated_at
		FROM persons
		WHERE id = ?
	`, id)

	var p persons.Person
	var role string
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Document,
		&p.Phone,
		&p.Email,
		&role,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return persons.Person{}, persons.ErrNotFound
		}
		return persons.Person{}, err
	}

	p.Role = persons.Role(role)
	return p, nil
}

func (r *PersonsRepo) ListByRole(ctx context.Context, role persons.Role) ([]persons.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, document, phone, email, role, created_at, updated_at
		FROM persons
		WHERE role = ?
		ORDER BY created_at ASC
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]persons.Person, 0)
	for rows.Next() {
		var p persons.Person
		var rl string
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Document,
			&p.Phone,
			&p.Email,
			&rl,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Role = persons.Role(rl)
		out = append(out, p)
	}

	return out, rows.Err()
}
