// Package cui implementa el Código Único de Identificación que la
// municipalidad asigna a cada can registrado.
//
// Formato: "NNNNNNNN-D" donde N es un número de 8 dígitos y D es el
// dígito verificador módulo 10. El dígito solo ayuda a detectar errores
// de transcripción simples; no es un control de seguridad.
package cui

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	numberMin int64 = 10_000_000
	numberMax int64 = 99_999_999
)

var (
	ErrInvalidFormat = errors.New("cui: invalid format")
	ErrCheckDigit    = errors.New("cui: check digit mismatch")
)

// CUI es el identificador cívico de un can registrado.
// Se genera una sola vez al registrar; es inmutable y nunca se reutiliza,
// incluso si el registro se da de baja.
type CUI struct {
	Number int64
}

// CheckDigit devuelve el dígito verificador (N mod 10).
func (c CUI) CheckDigit() int {
	return int(c.Number % 10)
}

func (c CUI) String() string {
	return fmt.Sprintf("%08d-%d", c.Number, c.CheckDigit())
}

// IsZero indica si el CUI no fue asignado.
func (c CUI) IsZero() bool {
	return c.Number == 0
}

// Parse valida formato y dígito verificador de un CUI impreso
// (por ejemplo, el que viene en el QR de un carnet).
func Parse(raw string) (CUI, error) {
	raw = strings.TrimSpace(raw)

	parts := strings.Split(raw, "-")
	if len(parts) != 2 || len(parts[0]) != 8 || len(parts[1]) != 1 {
		return CUI{}, ErrInvalidFormat
	}

	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || n < numberMin || n > numberMax {
		return CUI{}, ErrInvalidFormat
	}

	d, err := strconv.Atoi(parts[1])
	if err != nil {
		return CUI{}, ErrInvalidFormat
	}

	c := CUI{Number: n}
	if c.CheckDigit() != d {
		return CUI{}, ErrCheckDigit
	}
	return c, nil
}

// Generator produce candidatos aleatorios de CUI.
// El sorteo uniforme (en vez de un contador) evita contención en una
// secuencia central y no filtra el volumen de registros por el número.
type Generator struct {
	rand *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Candidate sortea un CUI uniforme en [10_000_000, 99_999_999].
// Función pura respecto a almacenamiento: sin I/O ni modo de fallo.
func (g *Generator) Candidate() CUI {
	n := numberMin + g.rand.Int63n(numberMax-numberMin+1)
	return CUI{Number: n}
}
