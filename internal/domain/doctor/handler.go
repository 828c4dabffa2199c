package doctor

import (
	"errors"
	"net/http"

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

// RegisterRoutes wires the doctor surface. The public group carries the
// directory and login; the protected group sits behind the JWT middleware.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.GET("/doctors", h.ListDoctors)
	public.POST("/doctors/login", h.Login)

	admin := protected.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/doctors", h.AddDoctor)

	me := protected.Group("/doctors/me", auth.RequireRole(auth.RoleDoctor))
	me.GET("/profile", h.GetProfile)
	me.PUT("/profile", h.UpdateProfile)
	me.PATCH("/availability", h.ToggleAvailability)
}

type addDoctorRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	ImageURL   string  `json:"image_url"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Experience string  `json:"experience"`
	About      string  `json:"about"`
	Fees       float64 `json:"fees"`
	Address    Address `json:"address"`
}

func (h *Handler) AddDoctor(c echo.Context) error {
	var req addDoctorRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	d := &Doctor{
		Name:       req.Name,
		Email:      req.Email,
		ImageURL:   req.ImageURL,
		Speciality: req.Speciality,
		Degree:     req.Degree,
		Experience: req.Experience,
		About:      req.About,
		Fees:       req.Fees,
		Address:    req.Address,
	}
	if err := h.svc.AddDoctor(c.Request().Context(), d, req.Password); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return response.Fail(c, http.StatusConflict, err.Error())
		}
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	return response.Created(c, "doctor added", response.Envelope{"doctor": d})
}

func (h *Handler) ListDoctors(c echo.Context) error {
	docs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []*Doctor{}
	}
	p := pagination.FromContext(c)
	total := len(docs)
	lo := min(p.Offset, total)
	hi := min(lo+p.Limit, total)
	return response.OK(c, "", response.Envelope{
		"doctors":  docs[lo:hi],
		"total":    total,
		"limit":    p.Limit,
		"offset":   p.Offset,
		"has_more": p.HasNext(total),
	})
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
	d, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return response.Fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}
	token, err := h.issuer.Issue(d.ID.String(), auth.RoleDoctor, d.Email)
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
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "doctor not found")
		}
		return err
	}
	return response.OK(c, "", response.Envelope{"doctor": d})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	d.ID = id
	if err := h.svc.UpdateProfile(c.Request().Context(), &d); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "doctor not found")
		}
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	return response.OK(c, "profile updated", response.Envelope{"doctor": d})
}

func (h *Handler) ToggleAvailability(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	available, err := h.svc.ToggleAvailability(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "doctor not found")
		}
		return err
	}
	return response.OK(c, "availability changed", response.Envelope{"available": available})
}
