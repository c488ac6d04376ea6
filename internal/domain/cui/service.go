package cui

import (
	"context"
	"errors"
	"fmt"
)

// ErrCapacityExhausted indica que no se encontró un candidato libre tras
// el máximo de intentos. Con ~90M de números posibles solo pasa si el
// espacio está casi lleno o el checker miente; el tope existe para que el
// loop nunca quede colgado ante un storage patológico.
var ErrCapacityExhausted = errors.New("cui: capacity exhausted")

const defaultMaxAttempts = 100

// ExistenceChecker consulta si un CUI ya pertenece a algún registro.
// Debe considerar también registros dados de baja (los CUI retirados no
// se reutilizan).
type ExistenceChecker interface {
	Exists(ctx context.Context, id CUI) (bool, error)
}

// Service genera CUIs garantizando unicidad contra persistencia.
type Service struct {
	gen         *Generator
	checker     ExistenceChecker
	maxAttempts int
}

func NewService(checker ExistenceChecker) *Service {
	return &Service{
		gen:         NewGenerator(),
		checker:     checker,
		maxAttempts: defaultMaxAttempts,
	}
}

// GenerateUnique sortea candidatos hasta encontrar uno libre.
// El check y el insert del llamador no son atómicos; la constraint de
// unicidad en la tabla resuelve la carrera y el llamador debe tratar el
// duplicate-key como condición reintentable.
func (s *Service) GenerateUnique(ctx context.Context) (CUI, error) {
	for i := 0; i < s.maxAttempts; i++ {
		candidate := s.gen.Candidate()

		taken, err := s.checker.Exists(ctx, candidate)
		if err != nil {
			return CUI{}, fmt.Errorf("cui: existence check failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return CUI{}, ErrCapacityExhausted
}
