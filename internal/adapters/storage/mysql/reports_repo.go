package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-municipal-registry/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

// Create inserta el reporte y sus colores en una transacción: o queda el
// reporte completo o no queda nada.
func (r *ReportsRepo) Create(ctx context.Context, rep reports.Report) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stray_reports (
				id,
				reporter_name, reporter_phone, reporter_email, citizen_id,
				latitude, longitude, address, zone,
				breed, size, temperament, animal_condition, urgency,
				photo_ref, description,
				assigned_to, assigned_by, assigned_at,
				status, status_notes, status_updated_at,
				created_at, updated_at
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`,
			rep.ID,
			rep.Reporter.Name,
			rep.Reporter.Phone,
			rep.Reporter.Email,
			toNullString(rep.Reporter.CitizenID),
			rep.Latitude,
			rep.Longitude,
			rep.Address,
			rep.Zone,
			rep.Breed,
			rep.Size,
			rep.Temperament,
			rep.Condition,
			string(rep.Urgency),
			rep.PhotoRef,
			rep.Description,
			toNullString(rep.Assignment.AssignedTo),
			toNullString(rep.Assignment.AssignedBy),
			toNullTime(rep.Assignment.AssignedAt),
			rep.Status.Code(),
			rep.StatusNotes,
			toNullTime(rep.StatusUpdatedAt),
			rep.CreatedAt,
			rep.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertColors(ctx, tx, rep.ID, rep.Colors)
	})
}

// Transition ejecuta una transición del ciclo de vida en una sola
// transacción: SELECT ... FOR UPDATE bloquea la fila, fn corre sus
// guardas sobre el estado ya commiteado y la escritura sale en el mismo
// tx. Dos transiciones concurrentes sobre el mismo reporte se serializan
// en el lock de fila; la que entra segunda ve el estado que dejó la
// primera. Ante cualquier fallo se hace rollback completo.
func (r *ReportsRepo) Transition(ctx context.Context, id string, fn func(rep *reports.Report) error) (reports.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.Report{}, reports.ErrNotFound
	}

	var out reports.Report
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectReportCols+` WHERE id = ? FOR UPDATE`, id)

		rep, err := scanReport(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return reports.ErrNotFound
			}
			return err
		}

		colors, err := loadColors(ctx, tx, rep.ID)
		if err != nil {
			return err
		}
		rep.Colors = colors

		if err := fn(&rep); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE stray_reports
			SET
				assigned_to = ?,
				assigned_by = ?,
				assigned_at = ?,
				status = ?,
				status_notes = ?,
				status_updated_at = ?,
				updated_at = ?
			WHERE id = ?
		`,
			toNullString(rep.Assignment.AssignedTo),
			toNullString(rep.Assignment.AssignedBy),
			toNullTime(rep.Assignment.AssignedAt),
			rep.Status.Code(),
			rep.StatusNotes,
			toNullTime(rep.StatusUpdatedAt),
			rep.UpdatedAt,
			rep.ID,
		); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM stray_report_colors WHERE report_id = ?
		`, rep.ID); err != nil {
			return err
		}
		if err := insertColors(ctx, tx, rep.ID, rep.Colors); err != nil {
			return err
		}

		out = rep
		return nil
	})
	return out, err
}

// selectReportCols es la proyección completa de stray_reports; cada
// lectura (GetByID, List, Transition) le agrega su WHERE.
const selectReportCols = `
	SELECT
		id,
		reporter_name, reporter_phone, reporter_email, citizen_id,
		latitude, longitude, address, zone,
		breed, size, temperament, animal_condition, urgency,
		photo_ref, description,
		assigned_to, assigned_by, assigned_at,
		status, status_notes, status_updated_at,
		created_at, updated_at
	FROM stray_reports`

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.Report{}, reports.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectReportCols+` WHERE id = ?`, id)

	rep, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return reports.Report{}, reports.ErrNotFound
		}
		return reports.Report{}, err
	}

	colors, err := loadColors(ctx, r.db, rep.ID)
	if err != nil {
		return reports.Report{}, err
	}
	rep.Colors = colors

	return rep, nil
}

func (r *ReportsRepo) List(ctx context.Context, filter reports.ListFilter, page reports.Page) ([]reports.Report, int, error) {
	page = page.Normalize()

	where := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.ReporterCitizenID != "" {
		where = append(where, "citizen_id = ?")
		args = append(args, filter.ReporterCitizenID)
	}
	if filter.AssignedTo != "" {
		where = append(where, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status.Code())
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stray_reports"+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectReportCols + clause + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, page.PerPage, (page.Page-1)*page.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]reports.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		colors, err := loadColors(ctx, r.db, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Colors = colors
	}

	return out, total, nil
}

func (r *ReportsRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// insertColors persiste la lista ordenada de colores; position preserva
// el orden declarado por el reportante.
func insertColors(ctx context.Context, tx *sql.Tx, reportID string, colors []string) error {
	for i, c := range colors {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stray_report_colors (report_id, position, color)
			VALUES (?,?,?)
		`, reportID, i, c); err != nil {
			return err
		}
	}
	return nil
}

// queryer abstrae *sql.DB y *sql.Tx para leer colores dentro o fuera de
// una transacción.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadColors(ctx context.Context, q queryer, reportID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT color FROM stray_report_colors
		WHERE report_id = ?
		ORDER BY position ASC
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanReport(row rowScanner) (reports.Report, error) {
	var rep reports.Report
	var citizenID, assignedTo, assignedBy sql.NullString
	var assignedAt, statusUpdatedAt sql.NullTime
	var urgency, statusCode string

	if err := row.Scan(
		&rep.ID,
		&rep.Reporter.Name,
		&rep.Reporter.Phone,
		&rep.Reporter.Email,
		&citizenID,
		&rep.Latitude,
		&rep.Longitude,
		&rep.Address,
		&rep.Zone,
		&rep.Breed,
		&rep.Size,
		&rep.Temperament,
		&rep.Condition,
		&urgency,
		&rep.PhotoRef,
		&rep.Description,
		&assignedTo,
		&assignedBy,
		&assignedAt,
		&statusCode,
		&rep.StatusNotes,
		&statusUpdatedAt,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	); err != nil {
		return reports.Report{}, err
	}

	status, err := reports.StatusFromCode(statusCode)
	if err != nil {
		return reports.Report{}, fmt.Errorf("report %s: %w", rep.ID, err)
	}

	rep.Reporter.CitizenID = citizenID.String
	rep.Assignment.AssignedTo = assignedTo.String
	rep.Assignment.AssignedBy = assignedBy.String
	rep.Assignment.AssignedAt = fromNullTime(assignedAt)
	rep.Urgency = reports.Urgency(urgency)
	rep.Status = status
	rep.StatusUpdatedAt = fromNullTime(statusUpdatedAt)

	return rep, nil
}
