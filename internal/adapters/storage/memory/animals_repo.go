package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-municipal-registry/internal/domain/animals"
	"pet-municipal-registry/internal/domain/cui"
)

type animalsRepo struct {
	mu    sync.RWMutex
	byCUI map[string]animals.Animal
}

func NewAnimalsRepo() animals.Repository {
	return &animalsRepo{
		byCUI: make(map[string]animals.Animal),
	}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if a.CUI.IsZero() {
		return errors.New("animal cui required")
	}
	// Mismo contrato que la constraint UNIQUE de la tabla
	if _, exists := r.byCUI[a.CUI.String()]; exists {
		return animals.ErrDuplicateCUI
	}
	r.byCUI[a.CUI.String()] = a
	return nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCUI[a.CUI.String()]; !exists {
		return animals.ErrNotFound
	}
	r.byCUI[a.CUI.String()] = a
	return nil
}

func (r *animalsRepo) GetByCUI(ctx context.Context, id cui.CUI) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byCUI[id.String()]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalsRepo) ListByOwner(ctx context.Context, ownerID string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byCUI {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})

	return out, nil
}

func (r *animalsRepo) ExistsCUI(ctx context.Context, id cui.CUI) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Incluye registros dados de baja: los CUI retirados no se reusan.
	_, ok := r.byCUI[id.String()]
	return ok, nil
}
