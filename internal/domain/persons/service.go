package persons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Document string
	Phone    string
	Email    string
	Role     Role
}

// ParseRole valida un rol recibido por la API.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleCitizen:
		return RoleCitizen, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleFieldTracking:
		return RoleFieldTracking, nil
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	default:
		return "", ErrInvalidInput
	}
}

// Register da de alta una persona. El alta de personal (cualquier rol
// distinto de citizen) requiere que quien ejecuta sea admin.
func (s *Service) Register(ctx context.Context, performerRole Role, in RegisterInput) (Person, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Person{}, ErrInvalidInput
	}
	if in.Role == "" {
		in.Role = RoleCitizen
	}
	if _, err := ParseRole(string(in.Role)); err != nil {
		return Person{}, ErrInvalidInput
	}
	if in.Role.IsStaff() && !performerRole.IsAdmin() {
		return Person{}, ErrForbidden
	}

	now := s.now()
	p := Person{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Document:  strings.TrimSpace(in.Document),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Person, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Person{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListFieldStaff devuelve el personal de seguimiento (para el selector de
// asignación del panel admin).
func (s *Service) ListFieldStaff(ctx context.Context) ([]Person, error) {
	return s.repo.ListByRole(ctx, RoleFieldTracking)
}
