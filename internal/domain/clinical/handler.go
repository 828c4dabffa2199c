package clinical

import (
	"errors"
	"net/http"

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
	write := protected.Group("", auth.RequireRole(auth.RoleDoctor))
	write.POST("/clinical-records", h.CreateRecord)
	write.GET("/doctors/me/clinical-records", h.ListMyRecords)

	read := protected.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	read.GET("/patients/:id/clinical-records", h.ListPatientRecords)
	read.GET("/clinical-records/:id", h.GetRecord)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var rec ClinicalRecord
	if err := c.Bind(&rec); err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	// The author is always the authenticated doctor.
	docID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	rec.DoctorID = docID
	if err := h.svc.CreateRecord(c.Request().Context(), &rec); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	return response.Created(c, "clinical record created", response.Envelope{"record": rec})
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "clinical record not found")
		}
		return err
	}
	return response.OK(c, "", response.Envelope{"record": rec})
}

func (h *Handler) ListPatientRecords(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid id")
	}
	opts := Options{
		Status:        c.QueryParam("status"),
		EncounterType: c.QueryParam("type"),
		SortBy:        c.QueryParam("sort_by"),
		Order:         c.QueryParam("order"),
	}
	recs, err := h.svc.ListForPatient(c.Request().Context(), patientID, opts)
	if err != nil {
		return err
	}
	return response.OK(c, "", response.Envelope{"records": recs})
}

func (h *Handler) ListMyRecords(c echo.Context) error {
	docID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid token subject")
	}
	recs, err := h.svc.ListForDoctor(c.Request().Context(), docID)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*ClinicalRecord{}
	}
	return response.OK(c, "", response.Envelope{"records": recs})
}
