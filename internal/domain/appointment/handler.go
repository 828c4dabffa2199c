package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/auth"
	"github.com/carebridge/hms/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	admin := protected.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/appointments", h.ListAll)
	admin.POST("/appointments/:id/cancel", h.AdminCancel)
	admin.POST("/appointments/:id/complete", h.Complete)
	admin.POST("/appointments/:id/activate", h.Activate)

	user := protected.Group("/users/me/appointments", auth.RequireRole(auth.RolePatient))
	user.POST("", h.Book)
	user.GET("", h.ListMine)
	user.POST("/:id/cancel", h.CancelMine)

	doc := protected.Group("/doctors/me", auth.RequireRole(auth.RoleDoctor))
	doc.GET("/appointments", h.ListForDoctor)
	doc.GET("/dashboard", h.DoctorDashboard)
}

type bookRequest struct {
	DoctorID string `json:"doctor_id"`
	SlotDate string `json:"slot_date"` // YYYY-MM-DD
	SlotTime string `json:"slot_time"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	docID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor_id")
	}
	slotDate, err := time.ParseInLocation(SlotDateFormat, req.SlotDate, time.Local)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid slot_date, expected YYYY-MM-DD")
	}

	appt, err := h.svc.Book(c.Request().Context(), Booking{
		UserID:   &userID,
		DoctorID: docID,
		SlotDate: slotDate,
		SlotTime: req.SlotTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrDoctorUnavailable):
			return response.Fail(c, http.StatusConflict, err.Error())
		default:
			return response.Fail(c, http.StatusBadRequest, err.Error())
		}
	}
	return response.Created(c, "appointment booked", response.Envelope{"appointment": appt})
}

func (h *Handler) ListMine(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	appts, err := h.svc.ListForIdentity(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return response.OK(c, "", response.Envelope{"appointments": appts})
}

func (h *Handler) CancelMine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid id")
	}
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	if err := h.svc.Cancel(c.Request().Context(), id, &userID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return response.Fail(c, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrNotOwner):
			return response.Fail(c, http.StatusForbidden, "appointment does not belong to caller")
		default:
			return err
		}
	}
	return response.OK(c, "appointment cancelled")
}

func (h *Handler) ListAll(c echo.Context) error {
	appts, stats, err := h.svc.ListAll(c.Request().Context(), time.Now())
	if err != nil {
		return err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return response.OK(c, "", response.Envelope{
		"appointments":      appts,
		"stats":             stats,
		"percentage_change": stats.PercentageChange(),
	})
}

func (h *Handler) AdminCancel(c echo.Context) error {
	return h.flagChange(c, func(id uuid.UUID) error {
		return h.svc.Cancel(c.Request().Context(), id, nil)
	}, "appointment cancelled")
}

func (h *Handler) Complete(c echo.Context) error {
	return h.flagChange(c, func(id uuid.UUID) error {
		return h.svc.Complete(c.Request().Context(), id)
	}, "appointment completed")
}

func (h *Handler) Activate(c echo.Context) error {
	return h.flagChange(c, func(id uuid.UUID) error {
		return h.svc.Activate(c.Request().Context(), id)
	}, "appointment activated")
}

func (h *Handler) flagChange(c echo.Context, fn func(uuid.UUID) error, msg string) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := fn(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "appointment not found")
		}
		return err
	}
	return response.OK(c, msg)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	docID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	appts, err := h.svc.ListForDoctor(c.Request().Context(), docID)
	if err != nil {
		return err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return response.OK(c, "", response.Envelope{"appointments": appts})
}

func (h *Handler) DoctorDashboard(c echo.Context) error {
	docID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	dash, err := h.svc.DashboardForDoctor(c.Request().Context(), docID)
	if err != nil {
		return err
	}
	return response.OK(c, "", response.Envelope{"dashboard": dash})
}
