package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-municipal-registry/internal/domain/animals"
	"pet-municipal-registry/internal/domain/cui"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

// Create inserta el registro. La columna cui tiene constraint UNIQUE:
// si dos registros concurrentes sortearon el mismo candidato, el que
// pierde recibe animals.ErrDuplicateCUI y el service reintenta con otro.
func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (
			id, cui, owner_id,
			name, breed, sex, color, size, marks,
			birth_date, photo_ref, active,
			registered_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		a.ID,
		a.CUI.String(),
		a.OwnerID,
		a.Name,
		a.Breed,
		string(a.Sex),
		a.Color,
		string(a.Size),
		a.Marks,
		toNullTime(a.BirthDate),
		a.PhotoRef,
		a.Active,
		a.RegisteredAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("insert animal %s: %w", a.CUI, animals.ErrDuplicateCUI)
		}
		return err
	}
	return nil
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = ?,
			color = ?,
			marks = ?,
			photo_ref = ?,
			active = ?,
			updated_at = ?
		WHERE cui = ?
	`,
		a.Name,
		a.Color,
		a.Marks,
		a.PhotoRef,
		a.Active,
		a.UpdatedAt,
		a.CUI.String(),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByCUI(ctx context.Context, id cui.CUI) (animals.Animal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, cui, owner_id,
			name, breed, sex, color, size, marks,
			birth_date, photo_ref, active,
			registered_at, updated_at
		FROM animals
		WHERE cui = ?
	`, id.String())

	a, err := scanAnimal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, animals.ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) ListByOwner(ctx context.Context, ownerID string) ([]animals.Animal, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, cui, owner_id,
			name, breed, sex, color, size, marks,
			birth_date, photo_ref, active,
			registered_at, updated_at
		FROM animals
		WHERE owner_id = ?
		ORDER BY registered_at ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

// ExistsCUI consulta sin filtrar por active: los CUI de registros dados
// de baja siguen retirados.
func (r *AnimalsRepo) ExistsCUI(ctx context.Context, id cui.CUI) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM animals WHERE cui = ?
	`, id.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var rawCUI, sex, size string
	var bd sql.NullTime

	if err := row.Scan(
		&a.ID,
		&rawCUI,
		&a.OwnerID,
		&a.Name,
		&a.Breed,
		&sex,
		&a.Color,
		&size,
		&a.Marks,
		&bd,
		&a.PhotoRef,
		&a.Active,
		&a.RegisteredAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	id, err := cui.Parse(rawCUI)
	if err != nil {
		return animals.Animal{}, fmt.Errorf("stored cui %q: %w", rawCUI, err)
	}

	a.CUI = id
	a.Sex = animals.Sex(sex)
	a.Size = animals.Size(size)
	a.BirthDate = fromNullTime(bd)
	return a, nil
}
