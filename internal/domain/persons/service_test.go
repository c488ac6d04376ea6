package persons

import (
	"context"
	"errors"
	"testing"
)

type testRepo struct {
	byID map[string]Person
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Person{}}
}

func (r *testRepo) Create(ctx context.Context, p Person) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Person, error) {
	p, ok := r.byID[id]
	if !ok {
		return Person{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByRole(ctx context.Context, role Role) ([]Person, error) {
	out := make([]Person, 0)
	for _, p := range r.byID {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestRegister_CitizenSelfService(t *testing.T) {
	svc := NewService(newTestRepo())

	p, err := svc.Register(context.Background(), RoleCitizen, RegisterInput{Name: "Ana"})
	if err != nil {
		t.Fatalf("register citizen: %v", err)
	}
	if p.Role != RoleCitizen {
		t.Fatalf("default role must be citizen, got %s", p.Role)
	}
}

func TestRegister_StaffRequiresAdmin(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Register(context.Background(), RoleCitizen, RegisterInput{
		Name: "Luis",
		Role: RoleFieldTracking,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("citizen creating staff must fail, got %v", err)
	}

	p, err := svc.Register(context.Background(), RoleAdmin, RegisterInput{
		Name: "Luis",
		Role: RoleFieldTracking,
	})
	if err != nil {
		t.Fatalf("admin creating staff: %v", err)
	}
	if !p.Role.CanBeAssignedReports() {
		t.Fatal("field_tracking staff must be assignable")
	}
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Register(context.Background(), RoleSuperAdmin, RegisterInput{
		Name: "X",
		Role: Role("janitor"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown role must fail, got %v", err)
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !RoleFieldTracking.CanBeAssignedReports() {
		t.Fatal("field_tracking must be assignable")
	}
	for _, r := range []Role{RoleCitizen, RoleAdmin, RoleSuperAdmin} {
		if r.CanBeAssignedReports() {
			t.Fatalf("%s must not be assignable", r)
		}
	}

	if !RoleAdmin.IsAdmin() || !RoleSuperAdmin.IsAdmin() {
		t.Fatal("admin roles must be admin")
	}
	if RoleCitizen.IsAdmin() || RoleFieldTracking.IsAdmin() {
		t.Fatal("citizen/field_tracking must not be admin")
	}
}

func TestListFieldStaff(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, _ = svc.Register(context.Background(), RoleAdmin, RegisterInput{Name: "Luis", Role: RoleFieldTracking})
	_, _ = svc.Register(context.Background(), RoleAdmin, RegisterInput{Name: "Ana", Role: RoleCitizen})

	staff, err := svc.ListFieldStaff(context.Background())
	if err != nil {
		t.Fatalf("list staff: %v", err)
	}
	if len(staff) != 1 || staff[0].Name != "Luis" {
		t.Fatalf("unexpected staff roster: %+v", staff)
	}
}
