package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-municipal-registry/internal/router"
)

// El router en modo dev (sin verifier ni DB) siembra un super admin con
// id "admin-dev"; los requests se autentican con X-Debug-User-ID/-Role.

func TestHTTP_EndToEnd_RegistrationAndCarnet(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	ownerID := "citizen-1"

	// 1) Ciudadano registra su can
	st, body := doReq(t, ts.URL, "POST", "/animals", ownerID, "citizen", map[string]any{
		"name":      "Rocky",
		"breed":     "mestizo",
		"sex":       "male",
		"color":     "negro",
		"size":      "medium",
		"photo_ref": "rocky.jpg",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 registering animal, got %d body=%s", st, body)
	}

	var animal struct {
		CUI string `json:"cui"`
	}
	mustUnmarshal(t, body, &animal)
	if animal.CUI == "" {
		t.Fatal("response must carry the assigned cui")
	}

	// 2) El dueño obtiene el carnet con QR
	st, body = doReq(t, ts.URL, "GET", "/animals/"+animal.CUI+"/card", ownerID, "citizen", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for card, got %d body=%s", st, body)
	}
	var card struct {
		VerifyURL string `json:"verify_url"`
		QRPNG     string `json:"qr_png_base64"`
	}
	mustUnmarshal(t, body, &card)
	if card.QRPNG == "" {
		t.Fatal("card must include qr png")
	}

	// 3) Otro ciudadano no puede ver el registro ajeno
	st, _ = doReq(t, ts.URL, "GET", "/animals/"+animal.CUI, "citizen-2", "citizen", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign animal, got %d", st)
	}

	// 4) Verificación pública, sin auth
	resp, err := http.Get(ts.URL + "/verify/" + animal.CUI)
	if err != nil {
		t.Fatalf("public verify: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 verifying cui, got %d", resp.StatusCode)
	}
	var verify struct {
		Valid      bool `json:"valid"`
		Registered bool `json:"registered"`
	}
	raw, _ := io.ReadAll(resp.Body)
	mustUnmarshal(t, raw, &verify)
	if !verify.Valid || !verify.Registered {
		t.Fatalf("expected valid+registered, got %+v", verify)
	}
}

func TestHTTP_EndToEnd_StrayReportLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	adminID := "admin-dev" // sembrado por el router en modo dev

	// 1) Admin da de alta personal de seguimiento
	staffID := createPerson(t, ts.URL, adminID, "María Campos", "field_tracking")
	otherStaffID := createPerson(t, ts.URL, adminID, "Jorge Ruiz", "field_tracking")

	// 2) Reporte sin foto => 400
	st, body := doReq(t, ts.URL, "POST", "/stray-reports", "citizen-1", "citizen", map[string]any{
		"latitude":  -15.8402,
		"longitude": -70.0219,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 without photo, got %d body=%s", st, body)
	}

	// 3) Reporte completo => 201, estado new
	st, body = doReq(t, ts.URL, "POST", "/stray-reports", "citizen-1", "citizen", map[string]any{
		"reporter_name": "Vecino",
		"latitude":      -15.8402,
		"longitude":     -70.0219,
		"breed":         "mestizo",
		"colors":        []string{"negro", "blanco"},
		"urgency":       "high",
		"photo_ref":     "img1.jpg",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating report, got %d body=%s", st, body)
	}
	var created struct {
		Report struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"report"`
		Warning string `json:"warning"`
	}
	mustUnmarshal(t, body, &created)
	if created.Report.Status != "new" {
		t.Fatalf("expected status new, got %s", created.Report.Status)
	}
	if created.Warning != "" {
		t.Fatalf("in-area report must not warn, got %q", created.Warning)
	}
	reportID := created.Report.ID

	// 4) Asignar a alguien sin rol de seguimiento => 400
	citizenPersonID := createPerson(t, ts.URL, adminID, "Pedro Vecino", "citizen")
	st, _ = doReq(t, ts.URL, "PUT", "/stray-reports/"+reportID+"/assign", adminID, "super_admin", map[string]any{
		"assigned_to": citizenPersonID,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 assigning non-field-tracking person, got %d", st)
	}

	// 5) Asignación válida => in_progress
	st, body = doReq(t, ts.URL, "PUT", "/stray-reports/"+reportID+"/assign", adminID, "super_admin", map[string]any{
		"assigned_to": staffID,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 assigning, got %d body=%s", st, body)
	}
	var assigned struct {
		AssignedTo struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"assigned_to"`
		Status string `json:"status"`
	}
	mustUnmarshal(t, body, &assigned)
	if assigned.Status != "in_progress" || assigned.AssignedTo.ID != staffID {
		t.Fatalf("unexpected assign response: %+v", assigned)
	}

	// 6) done sin notas => 400
	st, _ = doReq(t, ts.URL, "PUT", "/stray-reports/"+reportID+"/status", staffID, "field_tracking", map[string]any{
		"status": "done",
		"notes":  "  ",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for done without notes, got %d", st)
	}

	// 7) done con notas => 200
	st, body = doReq(t, ts.URL, "PUT", "/stray-reports/"+reportID+"/status", staffID, "field_tracking", map[string]any{
		"status": "done",
		"notes":  "Rescued and rehomed",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 updating status, got %d body=%s", st, body)
	}

	// 8) Otro miembro del personal => 403
	st, _ = doReq(t, ts.URL, "PUT", "/stray-reports/"+reportID+"/status", otherStaffID, "field_tracking", map[string]any{
		"status": "in_progress",
		"notes":  "intento ajeno",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for non-assignee, got %d", st)
	}

	// 9) El reportante ve su reporte en my-reports, en estado done
	st, body = doReq(t, ts.URL, "GET", "/stray-reports/my-reports", "citizen-1", "citizen", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for my-reports, got %d body=%s", st, body)
	}
	var mine struct {
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
		Total int `json:"total"`
	}
	mustUnmarshal(t, body, &mine)
	if mine.Total != 1 || mine.Items[0].Status != "done" {
		t.Fatalf("unexpected my-reports: %+v", mine)
	}

	// 10) La bandeja del asignado lo incluye
	st, body = doReq(t, ts.URL, "GET", "/stray-reports/assigned", staffID, "field_tracking", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for assigned inbox, got %d body=%s", st, body)
	}
	mustUnmarshal(t, body, &mine)
	if mine.Total != 1 || mine.Items[0].ID != reportID {
		t.Fatalf("unexpected assigned inbox: %+v", mine)
	}
}

func TestHTTP_OutOfAreaReportWarns(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "POST", "/stray-reports", "citizen-1", "citizen", map[string]any{
		"latitude":  -12.0464,
		"longitude": -77.0428,
		"photo_ref": "img2.jpg",
	})
	if st != http.StatusCreated {
		t.Fatalf("out-of-area report must be accepted, got %d body=%s", st, body)
	}
	var created struct {
		Warning string `json:"warning"`
	}
	mustUnmarshal(t, body, &created)
	if created.Warning == "" {
		t.Fatal("out-of-area report must carry a warning")
	}
}

// -------------------------
// Helpers
// -------------------------

func doReq(t *testing.T, baseURL, method, path, userID, role string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-User-ID", userID)
	req.Header.Set("X-Debug-Role", role)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func createPerson(t *testing.T, baseURL, adminID, name, role string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/persons", adminID, "super_admin", map[string]any{
		"name": name,
		"role": role,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating person %q, got %d body=%s", name, st, body)
	}

	var p struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, body, &p)
	if p.ID == "" {
		t.Fatalf("person %q has no id", name)
	}
	return p.ID
}

func mustUnmarshal(t *testing.T, raw []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
}
