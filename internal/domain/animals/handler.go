package animals

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-municipal-registry/internal/domain/cui"
	"pet-municipal-registry/internal/domain/persons"
	"pet-municipal-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RouteOptions struct {
	// BaseURL pública del servicio; se usa para armar la URL de
	// verificación que codifica el QR del carnet.
	BaseURL string
}

func RegisterRoutes(r chi.Router, svc *Service, personsSvc *persons.Service, opts RouteOptions) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", registerAnimalHandler(svc))
		ar.Get("/", listMyAnimalsHandler(svc))

		ar.Get("/{cui}", getAnimalHandler(svc))
		ar.Patch("/{cui}", updateAnimalHandler(svc))
		ar.Delete("/{cui}", deactivateAnimalHandler(svc))

		ar.Get("/{cui}/card", cardHandler(svc, personsSvc, opts))
	})

	// Verificación pública (la abre el QR del carnet, sin auth)
	r.Get("/verify/{cui}", verifyHandler(svc))
}

type registerAnimalRequest struct {
	Name      string `json:"name" validate:"required"`
	Breed     string `json:"breed" validate:"required"`
	Sex       string `json:"sex" validate:"omitempty,oneof=male female unknown"`
	Color     string `json:"color"`
	Size      string `json:"size" validate:"omitempty,oneof=small medium large"`
	Marks     string `json:"marks"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
	PhotoRef  string `json:"photo_ref"`
}

type animalResponse struct {
	ID           string     `json:"id"`
	CUI          string     `json:"cui"`
	OwnerID      string     `json:"owner_id"`
	Name         string     `json:"name"`
	Breed        string     `json:"breed"`
	Sex          string     `json:"sex"`
	Color        string     `json:"color,omitempty"`
	Size         string     `json:"size,omitempty"`
	Marks        string     `json:"marks,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	PhotoRef     string     `json:"photo_ref,omitempty"`
	Active       bool       `json:"active"`
	RegisteredAt time.Time  `json:"registered_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	Marks    *string `json:"marks"`
	PhotoRef *string `json:"photo_ref"`
}

type cardResponse struct {
	CUI        string    `json:"cui"`
	AnimalName string    `json:"animal_name"`
	Breed      string    `json:"breed"`
	OwnerName  string    `json:"owner_name"`
	IssuedAt   time.Time `json:"issued_at"`
	VerifyURL  string    `json:"verify_url"`
	QRPNG      string    `json:"qr_png_base64"`
}

type verifyResponse struct {
	Valid      bool            `json:"valid"`
	Registered bool            `json:"registered"`
	Animal     *animalResponse `json:"animal,omitempty"`
}

func registerAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		a, err := svc.Register(r.Context(), claims.UserID, RegisterInput{
			Name:      req.Name,
			Breed:     req.Breed,
			Sex:       Sex(req.Sex),
			Color:     req.Color,
			Size:      Size(req.Size),
			Marks:     req.Marks,
			BirthDate: bd,
			PhotoRef:  req.PhotoRef,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func listMyAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	// Owner o admin
	return func(w http.ResponseWriter, r *http.Request) {
		a, done := loadAuthorized(w, r, svc)
		if done {
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, done := loadAuthorized(w, r, svc)
		if done {
			return
		}

		var req updateAnimalRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), a.CUI, UpdateInput{
			Name:     req.Name,
			Color:    req.Color,
			Marks:    req.Marks,
			PhotoRef: req.PhotoRef,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func deactivateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, done := loadAuthorized(w, r, svc)
		if done {
			return
		}

		updated, err := svc.Deactivate(r.Context(), a.CUI)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func cardHandler(svc *Service, personsSvc *persons.Service, opts RouteOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, done := loadAuthorized(w, r, svc)
		if done {
			return
		}

		ownerName := ""
		if owner, err := personsSvc.GetByID(r.Context(), a.OwnerID); err == nil {
			ownerName = owner.Name
		}

		card, err := BuildCard(a, ownerName, opts.BaseURL, time.Now())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, cardResponse{
			CUI:        card.CUI,
			AnimalName: card.AnimalName,
			Breed:      card.Breed,
			OwnerName:  card.OwnerName,
			IssuedAt:   card.IssuedAt,
			VerifyURL:  card.VerifyURL,
			QRPNG:      base64.StdEncoding.EncodeToString(card.QRPNG),
		})
	}
}

func verifyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Verify(r.Context(), chi.URLParam(r, "cui"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := verifyResponse{Valid: res.Valid, Registered: res.Registered}
		if res.Registered {
			resp := toAnimalResponse(res.Animal)
			// El endpoint es público: no exponemos al dueño ni la foto.
			resp.OwnerID = ""
			resp.PhotoRef = ""
			out.Animal = &resp
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// loadAuthorized resuelve el CUI de la URL, carga el registro y aplica la
// regla owner-o-admin. Devuelve done=true si ya respondió.
func loadAuthorized(w http.ResponseWriter, r *http.Request, svc *Service) (Animal, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Animal{}, true
	}

	id, err := cui.Parse(chi.URLParam(r, "cui"))
	if err != nil {
		http.Error(w, "invalid cui", http.StatusBadRequest)
		return Animal{}, true
	}

	a, err := svc.GetByCUI(r.Context(), id)
	if err != nil {
		http.Error(w, "animal not found", http.StatusNotFound)
		return Animal{}, true
	}

	if a.OwnerID != claims.UserID && !persons.Role(claims.Role).IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Animal{}, true
	}

	return a, false
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, "animal inactive", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:           a.ID,
		CUI:          a.CUI.String(),
		OwnerID:      a.OwnerID,
		Name:         a.Name,
		Breed:        a.Breed,
		Sex:          string(a.Sex),
		Color:        a.Color,
		Size:         string(a.Size),
		Marks:        a.Marks,
		BirthDate:    a.BirthDate,
		PhotoRef:     a.PhotoRef,
		Active:       a.Active,
		RegisteredAt: a.RegisteredAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (persons/animals/reports) siguiendo la convención del resto del código.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
