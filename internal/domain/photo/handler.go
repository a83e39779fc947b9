package photo

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/identity"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(identity.RoleDoctor))
	g.GET("/patients/:id/photos", h.ListPhotos)
	g.POST("/patients/:id/photos", h.UploadPhotos)
	g.DELETE("/photos/:id", h.DeletePhoto)
}

type photoListResponse struct {
	Items []*PhotoWithURL `json:"items"`
	Total int             `json:"total"`
}

func (h *Handler) ListPhotos(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ListForPatient(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrPatientNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*PhotoWithURL{}
	}
	return c.JSON(http.StatusOK, photoListResponse{Items: items, Total: len(items)})
}

type uploadResponse struct {
	Results []UploadResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

// UploadPhotos accepts a multipart form with one or more "files" parts plus
// optional "description" and "photo_type" fields shared by the whole batch.
// A partial failure still reports every item; the response is 207 when at
// least one file failed and at least one succeeded.
func (h *Handler) UploadPhotos(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files provided")
	}

	files := make([]UploadFile, 0, len(headers))
	closers := make([]func() error, 0, len(headers))
	defer func() {
		for _, fn := range closers {
			fn()
		}
	}()
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable file: "+fh.Filename)
		}
		closers = append(closers, src.Close)
		files = append(files, UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     src,
		})
	}

	results, err := h.svc.UploadBatch(c.Request().Context(), patientID,
		files, c.FormValue("description"), c.FormValue("photo_type"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientNotFound):
			return echo.NewHTTPError(http.StatusNotFound, ErrPatientNotFound.Error())
		case errors.Is(err, ErrInvalidPhotoType):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case len(results) > 0:
			status := http.StatusInternalServerError
			if anySucceeded(results) {
				status = http.StatusMultiStatus
			}
			return c.JSON(status, uploadResponse{Results: results, Error: err.Error()})
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, uploadResponse{Results: results})
}

func anySucceeded(results []UploadResult) bool {
	for i := range results {
		if results[i].err == nil {
			return true
		}
	}
	return false
}

func (h *Handler) DeletePhoto(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePhoto(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
