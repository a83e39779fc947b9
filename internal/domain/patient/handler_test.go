package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/identity"
)

func newTestServer(svc *Service) *echo.Echo {
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api"))
	return e
}

func doRequest(e *echo.Echo, method, target, body string, role identity.Role) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if role != identity.RoleUnset {
		sess := &auth.Session{
			UserID:   uuid.New().String(),
			Email:    "doc@clinic.example",
			FullName: "Dr. Test",
			Role:     role,
		}
		req = req.WithContext(auth.WithSession(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetPatientHTTP(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	e := newTestServer(svc)

	rec := doRequest(e, http.MethodPost, "/api/patients",
		`{"full_name":"Ada Lovelace","age":36,"file_number":"F-1001"}`, identity.RoleDoctor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doRequest(e, http.MethodGet, "/api/patients/"+created.ID.String(), "", identity.RoleDoctor)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.FullName != "Ada Lovelace" || got.FileNumber != "F-1001" {
		t.Errorf("got %+v, want Ada Lovelace / F-1001", got)
	}
}

func TestCreatePatientHTTPDuplicateIsConflict(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	e := newTestServer(svc)
	body := `{"full_name":"Ada Lovelace","age":36,"file_number":"F-1001"}`

	if rec := doRequest(e, http.MethodPost, "/api/patients", body, identity.RoleDoctor); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodPost, "/api/patients", body, identity.RoleDoctor); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}
}

func TestCreatePatientHTTPValidation(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	e := newTestServer(svc)

	rec := doRequest(e, http.MethodPost, "/api/patients",
		`{"full_name":"","age":36,"file_number":"F-1"}`, identity.RoleDoctor)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListPatientsHTTPSearch(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	e := newTestServer(svc)

	for _, body := range []string{
		`{"full_name":"Ada Lovelace","age":36,"file_number":"F-1001"}`,
		`{"full_name":"Grace Hopper","age":45,"file_number":"F-2002"}`,
	} {
		if rec := doRequest(e, http.MethodPost, "/api/patients", body, identity.RoleDoctor); rec.Code != http.StatusCreated {
			t.Fatalf("seed status = %d", rec.Code)
		}
	}

	rec := doRequest(e, http.MethodGet, "/api/patients?q=grace", "", identity.RoleDoctor)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0].FullName != "Grace Hopper" {
		t.Errorf("got %+v, want exactly Grace Hopper", resp)
	}
}

func TestPatientRoutesRequireDoctorRole(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	e := newTestServer(svc)

	if rec := doRequest(e, http.MethodGet, "/api/patients", "", identity.RoleUnset); rec.Code != http.StatusUnauthorized {
		t.Errorf("no session status = %d, want 401", rec.Code)
	}
	if rec := doRequest(e, http.MethodGet, "/api/patients", "", identity.RolePending); rec.Code != http.StatusForbidden {
		t.Errorf("pending role status = %d, want 403", rec.Code)
	}
}

func TestDeletePatientHTTP(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	e := newTestServer(svc)

	rec := doRequest(e, http.MethodPost, "/api/patients",
		`{"full_name":"Ada Lovelace","age":36,"file_number":"F-1001"}`, identity.RoleDoctor)
	var created Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rec := doRequest(e, http.MethodDelete, "/api/patients/"+created.ID.String(), "", identity.RoleDoctor); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec := doRequest(e, http.MethodGet, "/api/patients/"+created.ID.String(), "", identity.RoleDoctor); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	if rec := doRequest(e, http.MethodDelete, "/api/patients/"+created.ID.String(), "", identity.RoleDoctor); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
