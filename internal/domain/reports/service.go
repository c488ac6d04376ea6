package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-municipal-registry/internal/domain/persons"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrBadState      = errors.New("invalid state")
	ErrNotAssignable = errors.New("assignee lacks field-tracking role")
)

// WarningOutOfArea se devuelve al crear un reporte con coordenadas fuera
// del área de cobertura. El reporte se acepta igual.
const WarningOutOfArea = "coordinates outside municipal service area"

// PersonDirectory es lo que el módulo necesita del directorio de personas.
// Lo satisface *persons.Service.
type PersonDirectory interface {
	GetByID(ctx context.Context, id string) (persons.Person, error)
}

type Service struct {
	repo    Repository
	persons PersonDirectory
	area    ServiceArea
	now     func() time.Time
}

func NewService(repo Repository, directory PersonDirectory, area ServiceArea) *Service {
	if area == (ServiceArea{}) {
		area = DefaultServiceArea()
	}
	return &Service{
		repo:    repo,
		persons: directory,
		area:    area,
		now:     time.Now,
	}
}

type CreateInput struct {
	Reporter    Reporter
	Latitude    float64
	Longitude   float64
	Address     string
	Zone        string
	Breed       string
	Size        string
	Temperament string
	Colors      []string
	Condition   string
	Urgency     Urgency
	PhotoRef    string
	Description string
}

// Create registra un reporte en estado new. La foto es obligatoria;
// coordenadas inválidas rechazan, coordenadas fuera del área solo
// devuelven warning.
func (s *Service) Create(ctx context.Context, in CreateInput) (Report, string, error) {
	if strings.TrimSpace(in.PhotoRef) == "" {
		return Report{}, "", ErrInvalidInput
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return Report{}, "", ErrInvalidInput
	}

	warning := ""
	if !s.area.Contains(in.Latitude, in.Longitude) {
		warning = WarningOutOfArea
	}

	if in.Urgency == "" {
		in.Urgency = UrgencyMedium
	}
	switch in.Urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
	default:
		return Report{}, "", ErrInvalidInput
	}

	colors := make([]string, 0, len(in.Colors))
	for _, c := range in.Colors {
		c = strings.TrimSpace(c)
		if c != "" {
			colors = append(colors, c)
		}
	}

	now := s.now()
	rep := Report{
		ID: uuid.NewString(),
		Reporter: Reporter{
			Name:      strings.TrimSpace(in.Reporter.Name),
			Phone:     strings.TrimSpace(in.Reporter.Phone),
			Email:     strings.TrimSpace(in.Reporter.Email),
			CitizenID: strings.TrimSpace(in.Reporter.CitizenID),
		},
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Address:     strings.TrimSpace(in.Address),
		Zone:        strings.TrimSpace(in.Zone),
		Breed:       strings.TrimSpace(in.Breed),
		Size:        strings.TrimSpace(in.Size),
		Temperament: strings.TrimSpace(in.Temperament),
		Colors:      colors,
		Condition:   strings.TrimSpace(in.Condition),
		Urgency:     in.Urgency,
		PhotoRef:    strings.TrimSpace(in.PhotoRef),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, rep); err != nil {
		return Report{}, "", err
	}
	return rep, warning, nil
}

// Assign asigna el reporte a personal de seguimiento y lo pasa a
// in_progress. Solo admin asigna; el asignado debe tener rol
// field_tracking. Reasignar un reporte done/closed lo reabre.
func (s *Service) Assign(ctx context.Context, reportID, staffID, performedBy string) (Report, error) {
	reportID = strings.TrimSpace(reportID)
	staffID = strings.TrimSpace(staffID)
	if reportID == "" || staffID == "" {
		return Report{}, ErrInvalidInput
	}

	if err := s.requireAdmin(ctx, performedBy); err != nil {
		return Report{}, err
	}

	staff, err := s.persons.GetByID(ctx, staffID)
	if errors.Is(err, persons.ErrNotFound) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	if !staff.Role.CanBeAssignedReports() {
		return Report{}, ErrNotAssignable
	}

	now := s.now()
	return s.repo.Transition(ctx, reportID, func(rep *Report) error {
		rep.Assignment = Assignment{
			AssignedTo: staff.ID,
			AssignedBy: performedBy,
			AssignedAt: &now,
		}
		rep.Status = StatusInProgress
		rep.StatusUpdatedAt = &now
		rep.UpdatedAt = now
		return nil
	})
}

// Unassign limpia la asignación y regresa el reporte al estado activo
// inicial. Idempotente si no había asignación.
func (s *Service) Unassign(ctx context.Context, reportID, performedBy string) (Report, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return Report{}, ErrInvalidInput
	}

	if err := s.requireAdmin(ctx, performedBy); err != nil {
		return Report{}, err
	}

	now := s.now()
	return s.repo.Transition(ctx, reportID, func(rep *Report) error {
		if !rep.Assignment.IsAssigned() {
			return nil
		}
		rep.Assignment = Assignment{}
		rep.Status = StatusActive
		rep.StatusUpdatedAt = &now
		rep.UpdatedAt = now
		return nil
	})
}

// UpdateStatus es la transición que ejecuta el personal asignado.
// Reglas:
//   - solo el asignado vigente puede ejecutarla
//   - newStatus restringido a {active, in_progress, done, under_review}
//   - done y under_review exigen notas no vacías
//
// Persiste estado, notas y timestamp en una sola escritura atómica. Las
// guardas de estado corren dentro de la sección crítica del repo: un
// Close que gana la carrera se ve ya commiteado y la transición falla.
func (s *Service) UpdateStatus(ctx context.Context, reportID string, newStatus Status, notes, performedBy string) (Report, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return Report{}, ErrInvalidInput
	}
	performedBy = strings.TrimSpace(performedBy)

	if _, ok := updatableStatuses[newStatus]; !ok {
		return Report{}, ErrInvalidInput
	}

	notes = strings.TrimSpace(notes)
	if notesRequired(newStatus) && notes == "" {
		return Report{}, ErrInvalidInput
	}

	now := s.now()
	return s.repo.Transition(ctx, reportID, func(rep *Report) error {
		if rep.Status == StatusClosed {
			return ErrBadState
		}
		if !rep.Assignment.IsAssigned() || rep.Assignment.AssignedTo != performedBy {
			return ErrForbidden
		}

		rep.Status = newStatus
		rep.StatusNotes = notes
		rep.StatusUpdatedAt = &now
		rep.UpdatedAt = now
		return nil
	})
}

// Close cierra el reporte por administración. Tras el cierre el personal
// no puede seguir actualizando; un admin puede reabrir reasignando.
func (s *Service) Close(ctx context.Context, reportID, notes, performedBy string) (Report, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return Report{}, ErrInvalidInput
	}

	if err := s.requireAdmin(ctx, performedBy); err != nil {
		return Report{}, err
	}

	notes = strings.TrimSpace(notes)
	now := s.now()
	return s.repo.Transition(ctx, reportID, func(rep *Report) error {
		// Idempotente
		if rep.Status == StatusClosed {
			return nil
		}

		rep.Status = StatusClosed
		if notes != "" {
			rep.StatusNotes = notes
		}
		rep.StatusUpdatedAt = &now
		rep.UpdatedAt = now
		return nil
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListAll es el listado admin (todas los reportes, paginado).
func (s *Service) ListAll(ctx context.Context, status Status, page Page) ([]Report, int, error) {
	return s.repo.List(ctx, ListFilter{Status: status}, page.Normalize())
}

// ListByReporter devuelve los reportes presentados por un ciudadano.
func (s *Service) ListByReporter(ctx context.Context, citizenID string, page Page) ([]Report, int, error) {
	citizenID = strings.TrimSpace(citizenID)
	if citizenID == "" {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{ReporterCitizenID: citizenID}, page.Normalize())
}

// ListByAssignee devuelve los reportes asignados a un miembro del personal.
func (s *Service) ListByAssignee(ctx context.Context, staffID string, page Page) ([]Report, int, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{AssignedTo: staffID}, page.Normalize())
}

// requireAdmin re-verifica el rol contra el directorio (no confiamos solo
// en el claim del token para operaciones administrativas). Solo el "no
// existe" degrada a ErrForbidden; un fallo de storage se propaga tal cual
// para que el handler responda 500 y no un 403 engañoso.
func (s *Service) requireAdmin(ctx context.Context, personID string) error {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return ErrForbidden
	}
	p, err := s.persons.GetByID(ctx, personID)
	if errors.Is(err, persons.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !p.Role.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
