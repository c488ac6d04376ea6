package animals

import (
	"context"

	"pet-municipal-registry/internal/domain/cui"
)

// Repository persiste el padrón de canes.
// Create debe devolver ErrDuplicateCUI (envuelto o directo) cuando la
// constraint de unicidad del CUI rechaza el insert; el service lo trata
// como condición reintentable.
type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	GetByCUI(ctx context.Context, id cui.CUI) (Animal, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Animal, error)

	// ExistsCUI considera también registros dados de baja.
	ExistsCUI(ctx context.Context, id cui.CUI) (bool, error)
}
