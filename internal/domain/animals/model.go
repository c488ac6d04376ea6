package animals

import (
	"time"

	"pet-municipal-registry/internal/domain/cui"
)

// Sex define el sexo del can.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Size define el porte del can.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Animal representa un can registrado en el padrón municipal.
// El CUI se asigna una sola vez al registrar y no cambia nunca; la baja
// es lógica (Active=false) para que el CUI quede retirado y no se reuse.
type Animal struct {
	ID  string  // id interno del registro
	CUI cui.CUI // identificador cívico impreso en el carnet

	OwnerID string // persona dueña (rol citizen)

	Name  string
	Breed string
	Sex   Sex
	Color string
	Size  Size
	Marks string // señas particulares

	BirthDate *time.Time
	PhotoRef  string

	Active bool

	RegisteredAt time.Time
	UpdatedAt    time.Time
}
