package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-municipal-registry/internal/domain/persons"
	"pet-municipal-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service, personsSvc *persons.Service) {
	r.Route("/stray-reports", func(sr chi.Router) {
		sr.Post("/", createReportHandler(svc))
		sr.Get("/", listReportsHandler(svc))
		sr.Get("/my-reports", listMyReportsHandler(svc))
		sr.Get("/assigned", listAssignedHandler(svc))

		sr.Get("/{reportID}", getReportHandler(svc))
		sr.Put("/{reportID}/assign", assignHandler(svc, personsSvc))
		sr.Put("/{reportID}/unassign", unassignHandler(svc))
		sr.Put("/{reportID}/status", updateStatusHandler(svc))
		sr.Put("/{reportID}/close", closeHandler(svc))
	})
}

type createReportRequest struct {
	ReporterName  string   `json:"reporter_name"`
	ReporterPhone string   `json:"reporter_phone"`
	ReporterEmail string   `json:"reporter_email" validate:"omitempty,email"`
	Latitude      float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64  `json:"longitude" validate:"min=-180,max=180"`
	Address       string   `json:"address"`
	Zone          string   `json:"zone"`
	Breed         string   `json:"breed"`
	Size          string   `json:"size"`
	Temperament   string   `json:"temperament"`
	Colors        []string `json:"colors"`
	Condition     string   `json:"condition"`
	Urgency       string   `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
	PhotoRef      string   `json:"photo_ref" validate:"required"`
	Description   string   `json:"description"`
}

type assignRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type closeRequest struct {
	Notes string `json:"notes"`
}

type assignmentResponse struct {
	AssignedTo string     `json:"assigned_to"`
	AssignedBy string     `json:"assigned_by"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
}

type reportResponse struct {
	ID              string              `json:"id"`
	ReporterName    string              `json:"reporter_name,omitempty"`
	ReporterPhone   string              `json:"reporter_phone,omitempty"`
	ReporterEmail   string              `json:"reporter_email,omitempty"`
	CitizenID       string              `json:"citizen_id,omitempty"`
	Latitude        float64             `json:"latitude"`
	Longitude       float64             `json:"longitude"`
	Address         string              `json:"address,omitempty"`
	Zone            string              `json:"zone,omitempty"`
	Breed           string              `json:"breed,omitempty"`
	Size            string              `json:"size,omitempty"`
	Temperament     string              `json:"temperament,omitempty"`
	Colors          []string            `json:"colors"`
	Condition       string              `json:"condition,omitempty"`
	Urgency         string              `json:"urgency"`
	PhotoRef        string              `json:"photo_ref"`
	Description     string              `json:"description,omitempty"`
	Assignment      *assignmentResponse `json:"assignment,omitempty"`
	Status          string              `json:"status"`
	StatusNotes     string              `json:"status_notes,omitempty"`
	StatusUpdatedAt *time.Time          `json:"status_updated_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type createReportResponse struct {
	Report  reportResponse `json:"report"`
	Warning string         `json:"warning,omitempty"`
}

type assignResponse struct {
	AssignedTo assigneeSummary `json:"assigned_to"`
	Status     string          `json:"status"`
}

type assigneeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type pagedReportsResponse struct {
	Items   []reportResponse `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

func createReportHandler(svc *Service) http.HandlerFunc {
	// Reportar no exige cuenta: si hay claims, el reporte queda vinculado
	// al ciudadano; si no, queda anónimo con los datos de contacto del body.
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		citizenID := ""
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			citizenID = claims.UserID
		}

		rep, warning, err := svc.Create(r.Context(), CreateInput{
			Reporter: Reporter{
				Name:      req.ReporterName,
				Phone:     req.ReporterPhone,
				Email:     req.ReporterEmail,
				CitizenID: citizenID,
			},
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			Address:     req.Address,
			Zone:        req.Zone,
			Breed:       req.Breed,
			Size:        req.Size,
			Temperament: req.Temperament,
			Colors:      req.Colors,
			Condition:   req.Condition,
			Urgency:     Urgency(req.Urgency),
			PhotoRef:    req.PhotoRef,
			Description: req.Description,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createReportResponse{
			Report:  toReportResponse(rep),
			Warning: warning,
		})
	}
}

func listReportsHandler(svc *Service) http.HandlerFunc {
	// Listado admin
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !persons.Role(claims.Role).IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var status Status
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := ParseStatus(raw)
			if err != nil {
				http.Error(w, "invalid status filter", http.StatusBadRequest)
				return
			}
			status = parsed
		}

		page := pageFromQuery(r)
		items, total, err := svc.ListAll(r.Context(), status, page)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPagedResponse(items, total, page))
	}
}

func listMyReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		page := pageFromQuery(r)
		items, total, err := svc.ListByReporter(r.Context(), claims.UserID, page)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPagedResponse(items, total, page))
	}
}

func listAssignedHandler(svc *Service) http.HandlerFunc {
	// Bandeja del personal de seguimiento
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		page := pageFromQuery(r)
		items, total, err := svc.ListByAssignee(r.Context(), claims.UserID, page)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPagedResponse(items, total, page))
	}
}

func getReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rep, err := svc.GetByID(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		// Visible para admin, el asignado y el reportante.
		role := persons.Role(claims.Role)
		if !role.IsAdmin() &&
			rep.Assignment.AssignedTo != claims.UserID &&
			rep.Reporter.CitizenID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func assignHandler(svc *Service, personsSvc *persons.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rep, err := svc.Assign(r.Context(), chi.URLParam(r, "reportID"), req.AssignedTo, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		staff, err := personsSvc.GetByID(r.Context(), rep.Assignment.AssignedTo)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, assignResponse{
			AssignedTo: assigneeSummary{
				ID:   staff.ID,
				Name: staff.Name,
				Role: string(staff.Role),
			},
			Status: string(rep.Status),
		})
	}
}

func unassignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rep, err := svc.Unassign(r.Context(), chi.URLParam(r, "reportID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		status, err := ParseStatus(req.Status)
		if err != nil {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		rep, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "reportID"), status, req.Notes, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(rep.Status),
			"notes":  rep.StatusNotes,
		})
	}
}

func closeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Body opcional
		var req closeRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		rep, err := svc.Close(r.Context(), chi.URLParam(r, "reportID"), req.Notes, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func pageFromQuery(r *http.Request) Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return Page{Page: page, PerPage: perPage}.Normalize()
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotAssignable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, "report closed", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPagedResponse(items []Report, total int, page Page) pagedReportsResponse {
	out := make([]reportResponse, 0, len(items))
	for _, rep := range items {
		out = append(out, toReportResponse(rep))
	}
	return pagedReportsResponse{
		Items:   out,
		Total:   total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
}

func toReportResponse(rep Report) reportResponse {
	out := reportResponse{
		ID:              rep.ID,
		ReporterName:    rep.Reporter.Name,
		ReporterPhone:   rep.Reporter.Phone,
		ReporterEmail:   rep.Reporter.Email,
		CitizenID:       rep.Reporter.CitizenID,
		Latitude:        rep.Latitude,
		Longitude:       rep.Longitude,
		Address:         rep.Address,
		Zone:            rep.Zone,
		Breed:           rep.Breed,
		Size:            rep.Size,
		Temperament:     rep.Temperament,
		Colors:          rep.Colors,
		Condition:       rep.Condition,
		Urgency:         string(rep.Urgency),
		PhotoRef:        rep.PhotoRef,
		Description:     rep.Description,
		Status:          string(rep.Status),
		StatusNotes:     rep.StatusNotes,
		StatusUpdatedAt: rep.StatusUpdatedAt,
		CreatedAt:       rep.CreatedAt,
		UpdatedAt:       rep.UpdatedAt,
	}
	if rep.Assignment.IsAssigned() {
		out.Assignment = &assignmentResponse{
			AssignedTo: rep.Assignment.AssignedTo,
			AssignedBy: rep.Assignment.AssignedBy,
			AssignedAt: rep.Assignment.AssignedAt,
		}
	}
	if out.Colors == nil {
		out.Colors = []string{}
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (persons/animals/reports) siguiendo la convención del resto del código.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
