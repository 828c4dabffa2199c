package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/auth"
	"github.com/carebridge/hms/pkg/pagination"
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
	public.POST("/users/register", h.Register)
	public.POST("/users/login", h.Login)

	me := protected.Group("/users/me", auth.RequireRole(auth.RolePatient))
	me.GET("/profile", h.GetProfile)
	me.PUT("/profile", h.UpdateProfile)

	admin := protected.Group("/patients", auth.RequireRole(auth.RoleAdmin))
	admin.POST("", h.CreatePatient)
	admin.GET("", h.ListPatients)
	admin.GET("/:id", h.GetAggregate)
	admin.PUT("/:id", h.UpdatePatient)
}

// fail maps domain errors onto the response envelope. Unexpected
// errors bubble up to the recovery/error middleware.
func fail(c echo.Context, err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return response.Fail(c, http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateUHID):
		return response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return response.Fail(c, http.StatusUnauthorized, "invalid credentials")
	case errors.As(err, &ve):
		return response.Fail(c, http.StatusBadRequest, strings.Join(ve.Fields, "; "))
	default:
		return err
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	token, err := h.issuer.Issue(u.ID.String(), auth.RolePatient, u.Email)
	if err != nil {
		return err
	}
	return response.Created(c, "account created", response.Envelope{"token": token})
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
	u, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	token, err := h.issuer.Issue(u.ID.String(), auth.RolePatient, u.Email)
	if err != nil {
		return err
	}
	return response.OK(c, "login successful", response.Envelope{"token": token})
}

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, "", response.Envelope{"user": u})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	var u User
	if err := c.Bind(&u); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	u.ID = id
	if err := h.svc.UpdateUserProfile(c.Request().Context(), &u); err != nil {
		return fail(c, err)
	}
	return response.OK(c, "profile updated", response.Envelope{"user": u})
}

type createPatientRequest struct {
	PatientRecord
	Password string `json:"password"`
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &req.PatientRecord, req.Password); err != nil {
		return fail(c, err)
	}
	return response.Created(c, "patient created", response.Envelope{"patient": req.PatientRecord})
}

func (h *Handler) ListPatients(c echo.Context) error {
	views, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	total := len(views)
	lo := min(p.Offset, total)
	hi := min(lo+p.Limit, total)
	return response.OK(c, "", response.Envelope{
		"patients": views[lo:hi],
		"total":    total,
		"limit":    p.Limit,
		"offset":   p.Offset,
		"has_more": p.HasNext(total),
	})
}

func (h *Handler) GetAggregate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid id")
	}
	agg, err := h.svc.Aggregate(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, "", response.Envelope{
		"patient":          agg.Patient,
		"appointments":     agg.Appointments,
		"clinical_records": agg.ClinicalRecords,
		"source":           agg.Patient.Source,
	})
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid id")
	}
	var p PatientRecord
	if err := c.Bind(&p); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return fail(c, err)
	}
	return response.OK(c, "patient updated", response.Envelope{"patient": p})
}
