package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-municipal-registry/internal/domain/reports"
)

type reportsRepo struct {
	mu   sync.Mutex
	byID map[string]reports.Report
}

// NewReportsRepo crea el repo in-memory. Usa un mutex exclusivo (no RW):
// Transition ejecuta lectura, guardas y escritura bajo el mismo lock,
// igual que el SELECT ... FOR UPDATE de la implementación MySQL.
func NewReportsRepo() reports.Repository {
	return &reportsRepo{
		byID: make(map[string]reports.Report),
	}
}

func (r *reportsRepo) Create(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, exists := r.byID[rep.ID]; exists {
		return errors.New("report already exists")
	}
	r.byID[rep.ID] = cloneReport(rep)
	return nil
}

func (r *reportsRepo) Transition(ctx context.Context, id string, fn func(rep *reports.Report) error) (reports.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.byID[id]
	if !exists {
		return reports.Report{}, reports.ErrNotFound
	}

	rep := cloneReport(stored)
	if err := fn(&rep); err != nil {
		return reports.Report{}, err
	}

	r.byID[id] = cloneReport(rep)
	return rep, nil
}

func (r *reportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.Report{}, reports.ErrNotFound
	}
	return cloneReport(rep), nil
}

func (r *reportsRepo) List(ctx context.Context, filter reports.ListFilter, page reports.Page) ([]reports.Report, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page = page.Normalize()

	matched := make([]reports.Report, 0)
	for _, rep := range r.byID {
		if filter.ReporterCitizenID != "" && rep.Reporter.CitizenID != filter.ReporterCitizenID {
			continue
		}
		if filter.AssignedTo != "" && rep.Assignment.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneReport(rep))
	}

	// Más recientes primero, igual que el ORDER BY de la implementación SQL
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	start := (page.Page - 1) * page.PerPage
	if start >= total {
		return []reports.Report{}, total, nil
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

// cloneReport copia el slice de colores para que el caller no comparta
// memoria con lo almacenado.
func cloneReport(rep reports.Report) reports.Report {
	if rep.Colors != nil {
		colors := make([]string, len(rep.Colors))
		copy(colors, rep.Colors)
		rep.Colors = colors
	}
	return rep
}
