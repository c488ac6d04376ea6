package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-municipal-registry/internal/domain/persons"
)

type personsRepo struct {
	mu   sync.RWMutex
	byID map[string]persons.Person
}

func NewPersonsRepo() persons.Repository {
	return &personsRepo{
		byID: make(map[string]persons.Person),
	}
}

func (r *personsRepo) Create(ctx context.Context, p persons.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("person id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("person already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *personsRepo) GetByID(ctx context.Context, id string) (persons.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return persons.Person{}, persons.ErrNotFound
	}
	return p, nil
}

func (r *personsRepo) ListByRole(ctx context.Context, role persons.Role) ([]persons.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]persons.Person, 0)
	for _, p := range r.byID {
		if p.Role == role {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// Seed inserta personas precargadas (personal municipal para dev/tests).
// Acepta IDs fijos para que los headers X-Debug-User-ID sean predecibles.
func Seed(repo persons.Repository, people ...persons.Person) error {
	for _, p := range people {
		if err := repo.Create(context.Background(), p); err != nil {
			return err
		}
	}
	return nil
}
