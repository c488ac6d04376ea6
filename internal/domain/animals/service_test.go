package animals

import (
	"context"
	"errors"
	"testing"

	"pet-municipal-registry/internal/domain/cui"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byCUI map[string]Animal

	// failCreates fuerza ErrDuplicateCUI en los primeros N inserts para
	// simular la carrera contra otro registro concurrente.
	failCreates int
}

func newTestRepo() *testRepo {
	return &testRepo{byCUI: map[string]Animal{}}
}

func (r *testRepo) Create(ctx context.Context, a Animal) error {
	if r.failCreates > 0 {
		r.failCreates--
		return ErrDuplicateCUI
	}
	if _, ok := r.byCUI[a.CUI.String()]; ok {
		return ErrDuplicateCUI
	}
	r.byCUI[a.CUI.String()] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Animal) error {
	if _, ok := r.byCUI[a.CUI.String()]; !ok {
		return ErrNotFound
	}
	r.byCUI[a.CUI.String()] = a
	return nil
}

func (r *testRepo) GetByCUI(ctx context.Context, id cui.CUI) (Animal, error) {
	a, ok := r.byCUI[id.String()]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byCUI {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ExistsCUI(ctx context.Context, id cui.CUI) (bool, error) {
	_, ok := r.byCUI[id.String()]
	return ok, nil
}

// -------------------------
// Tests
// -------------------------

func validRegister() RegisterInput {
	return RegisterInput{
		Name:     "Rocky",
		Breed:    "mestizo",
		Sex:      SexMale,
		Color:    "negro",
		Size:     SizeMedium,
		PhotoRef: "rocky.jpg",
	}
}

func TestRegister_AssignsValidCUI(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	a, err := svc.Register(context.Background(), "owner-1", validRegister())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if a.CUI.IsZero() {
		t.Fatal("cui must be assigned")
	}
	if _, err := cui.Parse(a.CUI.String()); err != nil {
		t.Fatalf("assigned cui %q is invalid: %v", a.CUI, err)
	}
	if !a.Active {
		t.Fatal("new registration must be active")
	}
}

func TestRegister_RequiresOwnerNameBreed(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	cases := []struct {
		owner string
		in    RegisterInput
	}{
		{owner: "", in: validRegister()},
		{owner: "owner-1", in: RegisterInput{Breed: "mestizo"}},
		{owner: "owner-1", in: RegisterInput{Name: "Rocky"}},
	}

	for i, c := range cases {
		if _, err := svc.Register(context.Background(), c.owner, c.in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestRegister_RetriesOnDuplicateKey(t *testing.T) {
	repo := newTestRepo()
	repo.failCreates = 2 // dos colisiones simuladas antes de insertar
	svc := NewService(repo)

	a, err := svc.Register(context.Background(), "owner-1", validRegister())
	if err != nil {
		t.Fatalf("register must absorb duplicate-key retries: %v", err)
	}
	if _, ok := repo.byCUI[a.CUI.String()]; !ok {
		t.Fatal("animal not persisted after retries")
	}
}

func TestRegister_UniqueAcrossMany(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		a, err := svc.Register(context.Background(), "owner-1", validRegister())
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if _, dup := seen[a.CUI.String()]; dup {
			t.Fatalf("duplicate cui generated: %s", a.CUI)
		}
		seen[a.CUI.String()] = struct{}{}
	}
}

func TestDeactivate_RetiresCUI(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	a, err := svc.Register(context.Background(), "owner-1", validRegister())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	deactivated, err := svc.Deactivate(context.Background(), a.CUI)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.Active {
		t.Fatal("must be inactive after deactivation")
	}

	// El CUI sigue retirado: el generador no puede volver a usarlo.
	taken, err := repo.ExistsCUI(context.Background(), a.CUI)
	if err != nil || !taken {
		t.Fatalf("retired cui must still exist in storage (taken=%v err=%v)", taken, err)
	}

	// Idempotente
	again, err := svc.Deactivate(context.Background(), a.CUI)
	if err != nil || again.Active {
		t.Fatalf("second deactivate: active=%v err=%v", again.Active, err)
	}

	// Un registro dado de baja no se edita
	name := "Nuevo"
	if _, err := svc.UpdateProfile(context.Background(), a.CUI, UpdateInput{Name: &name}); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState editing inactive animal, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	a, err := svc.Register(context.Background(), "owner-1", validRegister())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Registrado y activo
	res, err := svc.Verify(context.Background(), a.CUI.String())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Valid || !res.Registered || res.Animal.Name != "Rocky" {
		t.Fatalf("unexpected verify result: %+v", res)
	}

	// Formato inválido
	res, err = svc.Verify(context.Background(), "garbage")
	if err != nil || res.Valid {
		t.Fatalf("garbage must be invalid without error: %+v %v", res, err)
	}

	// Bien formado pero no registrado
	res, err = svc.Verify(context.Background(), "12345678-8")
	if err != nil || !res.Valid || res.Registered {
		t.Fatalf("well-formed unknown cui: %+v %v", res, err)
	}

	// Dado de baja: deja de verificar como registrado
	if _, err := svc.Deactivate(context.Background(), a.CUI); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	res, err = svc.Verify(context.Background(), a.CUI.String())
	if err != nil || !res.Valid || res.Registered {
		t.Fatalf("deactivated cui must not verify as registered: %+v %v", res, err)
	}
}

func TestBuildCard(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	a, err := svc.Register(context.Background(), "owner-1", validRegister())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	card, err := BuildCard(a, "Juan Pérez", "https://mascotas.munipuno.gob.pe/", a.RegisteredAt)
	if err != nil {
		t.Fatalf("build card: %v", err)
	}

	wantURL := "https://mascotas.munipuno.gob.pe/verify/" + a.CUI.String()
	if card.VerifyURL != wantURL {
		t.Fatalf("verify url = %q, want %q", card.VerifyURL, wantURL)
	}
	if len(card.QRPNG) == 0 {
		t.Fatal("qr png must not be empty")
	}
	if card.OwnerName != "Juan Pérez" || card.AnimalName != "Rocky" {
		t.Fatalf("card fields wrong: %+v", card)
	}

	// No se emite carnet de un registro dado de baja
	inactive := a
	inactive.Active = false
	if _, err := BuildCard(inactive, "Juan Pérez", "http://x", a.RegisteredAt); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState for inactive animal, got %v", err)
	}
}
