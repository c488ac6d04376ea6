package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-municipal-registry/internal/domain/cui"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicateCUI = errors.New("duplicate cui")
	ErrBadState     = errors.New("invalid state")
)

// maxInsertAttempts acota los reintentos cuando dos registros concurrentes
// sortean el mismo candidato y uno pierde contra la constraint de unicidad.
const maxInsertAttempts = 5

type Service struct {
	repo Repository
	ids  *cui.Service
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		ids:  cui.NewService(existenceChecker{repo: repo}),
		now:  time.Now,
	}
}

// existenceChecker adapta el Repository al port del generador de CUI.
type existenceChecker struct {
	repo Repository
}

func (c existenceChecker) Exists(ctx context.Context, id cui.CUI) (bool, error) {
	return c.repo.ExistsCUI(ctx, id)
}

type RegisterInput struct {
	Name      string
	Breed     string
	Sex       Sex
	Color     string
	Size      Size
	Marks     string
	BirthDate *time.Time
	PhotoRef  string
}

// Register da de alta un can: sortea un CUI libre e inserta. Si el insert
// pierde la carrera contra otro registro concurrente (duplicate key),
// regenera y reintenta; la colisión no se expone salvo agotar intentos.
func (s *Service) Register(ctx context.Context, ownerID string, in RegisterInput) (Animal, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Breed) == "" {
		return Animal{}, ErrInvalidInput
	}
	if in.Sex == "" {
		in.Sex = SexUnknown
	}

	var lastErr error
	for i := 0; i < maxInsertAttempts; i++ {
		id, err := s.ids.GenerateUnique(ctx)
		if err != nil {
			return Animal{}, err
		}

		now := s.now()
		a := Animal{
			ID:           uuid.NewString(),
			CUI:          id,
			OwnerID:      ownerID,
			Name:         strings.TrimSpace(in.Name),
			Breed:        strings.TrimSpace(in.Breed),
			Sex:          in.Sex,
			Color:        strings.TrimSpace(in.Color),
			Size:         in.Size,
			Marks:        strings.TrimSpace(in.Marks),
			BirthDate:    in.BirthDate,
			PhotoRef:     strings.TrimSpace(in.PhotoRef),
			Active:       true,
			RegisteredAt: now,
			UpdatedAt:    now,
		}

		err = s.repo.Create(ctx, a)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrDuplicateCUI) {
			return Animal{}, err
		}
		lastErr = err
	}

	return Animal{}, errors.Join(cui.ErrCapacityExhausted, lastErr)
}

func (s *Service) GetByCUI(ctx context.Context, id cui.CUI) (Animal, error) {
	return s.repo.GetByCUI(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Animal, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string
	Color    *string
	Marks    *string
	PhotoRef *string
}

// UpdateProfile actualiza los campos mutables del registro. El CUI, el
// dueño y la raza declarada no se tocan por esta vía.
func (s *Service) UpdateProfile(ctx context.Context, id cui.CUI, in UpdateInput) (Animal, error) {
	a, err := s.repo.GetByCUI(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if !a.Active {
		return Animal{}, ErrBadState
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Animal{}, ErrInvalidInput
		}
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Color != nil {
		a.Color = strings.TrimSpace(*in.Color)
	}
	if in.Marks != nil {
		a.Marks = strings.TrimSpace(*in.Marks)
	}
	if in.PhotoRef != nil {
		a.PhotoRef = strings.TrimSpace(*in.PhotoRef)
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// Deactivate da de baja lógica el registro. El CUI queda retirado:
// la fila persiste y ExistsCUI lo sigue viendo, así nunca se reasigna.
func (s *Service) Deactivate(ctx context.Context, id cui.CUI) (Animal, error) {
	a, err := s.repo.GetByCUI(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	// Idempotente
	if !a.Active {
		return a, nil
	}

	a.Active = false
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// VerifyResult es la respuesta del endpoint público de verificación
// (el que abre el QR del carnet).
type VerifyResult struct {
	Valid      bool   // formato y dígito verificador correctos
	Registered bool   // existe un registro activo con ese CUI
	Animal     Animal // solo si Registered
}

// Verify valida formato/dígito y consulta el padrón. Un CUI bien formado
// pero inexistente no es error: es un carnet falso o dado de baja.
func (s *Service) Verify(ctx context.Context, raw string) (VerifyResult, error) {
	id, err := cui.Parse(raw)
	if err != nil {
		return VerifyResult{Valid: false}, nil
	}

	a, err := s.repo.GetByCUI(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return VerifyResult{Valid: true, Registered: false}, nil
		}
		return VerifyResult{}, err
	}
	if !a.Active {
		return VerifyResult{Valid: true, Registered: false}, nil
	}

	return VerifyResult{Valid: true, Registered: true, Animal: a}, nil
}
