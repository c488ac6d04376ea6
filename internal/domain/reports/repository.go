package reports

import "context"

// ListFilter acota una lectura paginada. Campos vacíos no filtran.
type ListFilter struct {
	ReporterCitizenID string
	AssignedTo        string
	Status            Status
}

// Page es la paginación estándar de los listados (1-based).
type Page struct {
	Page    int
	PerPage int
}

// Normalize aplica los defaults de paginación.
func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 10
	}
	return p
}

// Repository persiste reportes.
type Repository interface {
	Create(ctx context.Context, rep Report) error

	// Transition carga el reporte, ejecuta fn sobre él y persiste el
	// resultado, todo dentro de la misma sección crítica (SELECT ... FOR
	// UPDATE en SQL, mutex en memoria). Las guardas que dependen del
	// estado vigente van en fn: otro Transition concurrente sobre el
	// mismo reporte no puede colarse entre la lectura y la escritura.
	// Si fn devuelve error se descarta todo y el error se propaga.
	Transition(ctx context.Context, id string, fn func(rep *Report) error) (Report, error)

	GetByID(ctx context.Context, id string) (Report, error)

	// List devuelve la página pedida y el total sin paginar.
	List(ctx context.Context, filter ListFilter, page Page) ([]Report, int, error)
}
