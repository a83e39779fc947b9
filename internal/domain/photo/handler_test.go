package photo

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/identity"
)

func newPhotoTestServer(svc *Service) *echo.Echo {
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api"))
	return e
}

func withDoctorSession(req *http.Request) *http.Request {
	sess := &auth.Session{
		UserID:   uuid.New().String(),
		Email:    "doc@clinic.example",
		FullName: "Dr. Test",
		Role:     identity.RoleDoctor,
	}
	return req.WithContext(auth.WithSession(req.Context(), sess))
}

func multipartBody(t *testing.T, files []string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range files {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("imagebytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadPhotosHTTP(t *testing.T) {
	svc, repo, store, info := newTestService()
	e := newPhotoTestServer(svc)

	body, contentType := multipartBody(t, []string{"a.jpg", "b.jpg"},
		map[string]string{"description": "post-op", "photo_type": "wound"})
	req := httptest.NewRequest(http.MethodPost, "/api/patients/"+info.ID.String()+"/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if len(repo.photos) != 2 || store.Len() != 2 {
		t.Errorf("rows=%d blobs=%d, want 2 each", len(repo.photos), store.Len())
	}
}

func TestUploadPhotosHTTPInvalidType(t *testing.T) {
	svc, _, _, info := newTestService()
	e := newPhotoTestServer(svc)

	body, contentType := multipartBody(t, []string{"a.jpg"}, map[string]string{"photo_type": "selfie"})
	req := httptest.NewRequest(http.MethodPost, "/api/patients/"+info.ID.String()+"/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadPhotosHTTPUnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService()
	e := newPhotoTestServer(svc)

	body, contentType := multipartBody(t, []string{"a.jpg"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/patients/"+uuid.NewString()+"/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListPhotosHTTP(t *testing.T) {
	svc, _, _, info := newTestService()
	e := newPhotoTestServer(svc)

	body, contentType := multipartBody(t, []string{"a.jpg", "b.jpg", "c.jpg"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/patients/"+info.ID.String()+"/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patients/"+info.ID.String()+"/photos", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var resp photoListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	for _, item := range resp.Items {
		if item.URL == "" {
			t.Errorf("photo %s has no URL", item.ID)
		}
	}
}

func TestDeletePhotoHTTP(t *testing.T) {
	svc, _, _, info := newTestService()
	e := newPhotoTestServer(svc)

	results, err := svc.UploadBatch(context.Background(), info.ID, batchOf("a.jpg"), "", "general")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/photos/"+results[0].Photo.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/photos/"+results[0].Photo.ID.String(), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, withDoctorSession(req))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
