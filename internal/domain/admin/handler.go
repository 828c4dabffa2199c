package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/auth"
	"github.com/carebridge/hms/pkg/response"
)

type Handler struct {
	svc    *Service
	issuer *auth.TokenIssuer
}

func NewHandler(svc *Service, issuer *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/admin/login", h.Login)

	adm := protected.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	adm.GET("/dashboard", h.Dashboard)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return response.Fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}
	token, err := h.issuer.Issue(a.ID.String(), auth.RoleAdmin, a.Email)
	if err != nil {
		return err
	}
	return response.OK(c, "login successful", response.Envelope{"token": token})
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, "", response.Envelope{"dashboard": stats})
}
