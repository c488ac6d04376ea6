package persons

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-municipal-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/persons", func(pr chi.Router) {
		pr.Post("/", registerPersonHandler(svc))
		pr.Get("/staff", listStaffHandler(svc))
	})
}

type registerPersonRequest struct {
	Name     string `json:"name" validate:"required"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role"`
}

type personResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func registerPersonHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerPersonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p, err := svc.Register(r.Context(), Role(claims.Role), RegisterInput{
			Name:     req.Name,
			Document: req.Document,
			Phone:    req.Phone,
			Email:    req.Email,
			Role:     Role(req.Role),
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPersonResponse(p))
	}
}

func listStaffHandler(svc *Service) http.HandlerFunc {
	// Solo admin: es el roster para asignar reportes.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !Role(claims.Role).IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListFieldStaff(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]personResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPersonResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toPersonResponse(p Person) personResponse {
	return personResponse{
		ID:        p.ID,
		Name:      p.Name,
		Document:  p.Document,
		Phone:     p.Phone,
		Email:     p.Email,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (persons/animals/reports) siguiendo la convención del resto del código.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
