package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-municipal-registry/internal/domain/reports"
)

func seedReport(t *testing.T, repo reports.Repository) reports.Report {
	t.Helper()

	rep := reports.Report{
		ID:        "rep-1",
		Latitude:  -15.84,
		Longitude: -70.02,
		PhotoRef:  "img1.jpg",
		Colors:    []string{"negro"},
		Status:    reports.StatusNew,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := repo.Create(context.Background(), rep); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rep
}

func TestTransition_PersistsMutation(t *testing.T) {
	repo := NewReportsRepo()
	rep := seedReport(t, repo)

	got, err := repo.Transition(context.Background(), rep.ID, func(r *reports.Report) error {
		r.Status = reports.StatusClosed
		r.Colors = append(r.Colors, "blanco")
		return nil
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got.Status != reports.StatusClosed {
		t.Fatalf("returned report not mutated: %s", got.Status)
	}

	stored, _ := repo.GetByID(context.Background(), rep.ID)
	if stored.Status != reports.StatusClosed || len(stored.Colors) != 2 {
		t.Fatalf("mutation not persisted: %+v", stored)
	}
}

func TestTransition_ErrorDiscardsChanges(t *testing.T) {
	repo := NewReportsRepo()
	rep := seedReport(t, repo)

	guard := errors.New("guard rejected")
	_, err := repo.Transition(context.Background(), rep.ID, func(r *reports.Report) error {
		r.Status = reports.StatusClosed
		return guard
	})
	if !errors.Is(err, guard) {
		t.Fatalf("expected guard error, got %v", err)
	}

	// Igual que el rollback SQL: nada del fn fallido queda persistido
	stored, _ := repo.GetByID(context.Background(), rep.ID)
	if stored.Status != reports.StatusNew {
		t.Fatalf("failed transition must not persist, got %s", stored.Status)
	}
}

func TestTransition_MissingReport(t *testing.T) {
	repo := NewReportsRepo()

	_, err := repo.Transition(context.Background(), "nope", func(r *reports.Report) error {
		return nil
	})
	if !errors.Is(err, reports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
