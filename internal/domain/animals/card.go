package animals

import (
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Card es el contenido del carnet imprimible de un can registrado.
// El QR codifica la URL pública de verificación del CUI.
type Card struct {
	CUI        string
	AnimalName string
	Breed      string
	OwnerName  string
	IssuedAt   time.Time
	VerifyURL  string
	QRPNG      []byte // PNG listo para incrustar en el carnet
}

const qrSizePx = 256

// BuildCard arma el carnet de un registro activo.
func BuildCard(a Animal, ownerName, baseURL string, issuedAt time.Time) (Card, error) {
	if !a.Active {
		return Card{}, ErrBadState
	}

	verifyURL := fmt.Sprintf("%s/verify/%s", strings.TrimRight(baseURL, "/"), a.CUI.String())

	png, err := qrcode.Encode(verifyURL, qrcode.Medium, qrSizePx)
	if err != nil {
		return Card{}, fmt.Errorf("card qr encode: %w", err)
	}

	return Card{
		CUI:        a.CUI.String(),
		AnimalName: a.Name,
		Breed:      a.Breed,
		OwnerName:  ownerName,
		IssuedAt:   issuedAt,
		VerifyURL:  verifyURL,
		QRPNG:      png,
	}, nil
}
