package admin

import (
	"errors"
	"net/http"

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
	g := api.Group("/admin", auth.RequireRole(identity.RoleDoctor))
	g.GET("/users", h.ListUsers)
	g.POST("/update-user-role", h.UpdateUserRole)
	g.PUT("/users/:id/role", h.UpdateUserRoleByPath)
}

type userListResponse struct {
	Items []*identity.User `json:"items"`
	Total int              `json:"total"`
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if users == nil {
		users = []*identity.User{}
	}
	return c.JSON(http.StatusOK, userListResponse{Items: users, Total: len(users)})
}

type updateRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type updateRoleResponse struct {
	Success bool           `json:"success"`
	User    *identity.User `json:"user,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (h *Handler) UpdateUserRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, updateRoleResponse{Error: "invalid request body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, updateRoleResponse{Error: "userId is required"})
	}

	user, err := h.svc.UpdateRole(c.Request().Context(), req.UserID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidRole):
			return c.JSON(http.StatusBadRequest, updateRoleResponse{Error: err.Error()})
		case errors.Is(err, identity.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, updateRoleResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, updateRoleResponse{Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, updateRoleResponse{Success: true, User: user})
}

// UpdateUserRoleByPath is the REST-shaped variant of UpdateUserRole.
func (h *Handler) UpdateUserRoleByPath(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, updateRoleResponse{Error: "invalid request body"})
	}
	req.UserID = c.Param("id")

	user, err := h.svc.UpdateRole(c.Request().Context(), req.UserID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidRole):
			return c.JSON(http.StatusBadRequest, updateRoleResponse{Error: err.Error()})
		case errors.Is(err, identity.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, updateRoleResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, updateRoleResponse{Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, updateRoleResponse{Success: true, User: user})
}
