package reports

import (
	"errors"
	"time"
)

// Status es el único vocabulario de estados del sistema. Los códigos
// cortos heredados (n/a/p/d/r/c) viven solo en el borde de persistencia;
// ver Code y StatusFromCode.
type Status string

const (
	StatusNew         Status = "new"          // recién reportado
	StatusActive      Status = "active"       // activo sin asignar (estado inicial tras desasignar)
	StatusInProgress  Status = "in_progress"  // asignado, en atención
	StatusUnderReview Status = "under_review" // en revisión
	StatusDone        Status = "done"         // atendido
	StatusClosed      Status = "closed"       // cerrado por administración
)

// updatableStatuses son los estados que el personal asignado puede fijar
// vía UpdateStatus.
var updatableStatuses = map[Status]struct{}{
	StatusActive:      {},
	StatusInProgress:  {},
	StatusDone:        {},
	StatusUnderReview: {},
}

// notesRequired indica si el estado exige notas no vacías al fijarlo.
func notesRequired(s Status) bool {
	return s == StatusDone || s == StatusUnderReview
}

// Code devuelve el código corto de una letra para la columna de BD.
func (s Status) Code() string {
	switch s {
	case StatusNew:
		return "n"
	case StatusActive:
		return "a"
	case StatusInProgress:
		return "p"
	case StatusDone:
		return "d"
	case StatusUnderReview:
		return "r"
	case StatusClosed:
		return "c"
	default:
		return ""
	}
}

// StatusFromCode traduce el código corto de persistencia al estado canónico.
func StatusFromCode(code string) (Status, error) {
	switch code {
	case "n":
		return StatusNew, nil
	case "a":
		return StatusActive, nil
	case "p":
		return StatusInProgress, nil
	case "d":
		return StatusDone, nil
	case "r":
		return StatusUnderReview, nil
	case "c":
		return StatusClosed, nil
	default:
		return "", errors.New("reports: unknown status code " + code)
	}
}

// ParseStatus valida un estado recibido por la API.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusNew, StatusActive, StatusInProgress, StatusUnderReview, StatusDone, StatusClosed:
		return s, nil
	default:
		return "", ErrInvalidInput
	}
}

// Urgency define la urgencia declarada por el reportante.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Reporter identifica a quien reporta. CitizenID es opcional: los
// reportes anónimos llevan solo los datos de contacto que el reportante quiso dejar.
type Reporter struct {
	Name      string
	Phone     string
	Email     string
	CitizenID string
}

// Assignment registra la asignación vigente a personal de seguimiento.
type Assignment struct {
	AssignedTo string // persona con rol field_tracking
	AssignedBy string // admin que asignó
	AssignedAt *time.Time
}

// IsAssigned indica si el reporte tiene personal asignado.
func (a Assignment) IsAssigned() bool {
	return a.AssignedTo != ""
}

// Report es un reporte ciudadano de can callejero o en riesgo.
type Report struct {
	ID string

	Reporter Reporter

	Latitude  float64
	Longitude float64
	Address   string
	Zone      string

	Breed       string
	Size        string
	Temperament string
	Colors      []string // lista ordenada
	Condition   string
	Urgency     Urgency

	PhotoRef    string // obligatorio al crear
	Description string

	Assignment Assignment

	Status          Status
	StatusNotes     string
	StatusUpdatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceArea es el bounding box del área de cobertura municipal.
// Coordenadas fuera del área no rechazan el reporte; solo generan una
// advertencia para triage.
type ServiceArea struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// DefaultServiceArea cubre la extensión del municipio de Puno.
func DefaultServiceArea() ServiceArea {
	return ServiceArea{
		MinLat: -15.95, MaxLat: -15.75,
		MinLon: -70.10, MaxLon: -69.95,
	}
}

func (sa ServiceArea) Contains(lat, lon float64) bool {
	return lat >= sa.MinLat && lat <= sa.MaxLat &&
		lon >= sa.MinLon && lon <= sa.MaxLon
}
