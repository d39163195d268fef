package medrecord

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carepoint/hms/internal/platform/auth"
	"github.com/carepoint/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RolePharmacist))
	read.GET("/medical-records", h.List)
	read.GET("/medical-records/:id", h.Get)

	write := api.Group("", auth.RequireRole(auth.RoleDoctor))
	write.POST("/medical-records", h.Create)
	write.PATCH("/medical-records/:id", h.Update)
}

type createRequest struct {
	PatientID           uuid.UUID       `json:"patient_id"`
	DoctorID            *uuid.UUID      `json:"doctor_id"`
	Diagnosis           string          `json:"diagnosis"`
	PrescribedTreatment json.RawMessage `json:"prescribed_treatment"`
	TreatmentQuantities string          `json:"treatment_quantities"`
	TestResults         json.RawMessage `json:"test_results"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r := &MedicalRecord{
		PatientID:           req.PatientID,
		DoctorID:            req.DoctorID,
		Diagnosis:           req.Diagnosis,
		TreatmentQuantities: req.TreatmentQuantities,
		TestResults:         req.TestResults,
	}
	if len(req.PrescribedTreatment) > 0 && string(req.PrescribedTreatment) != "null" {
		t, err := decodeTreatment(req.PrescribedTreatment)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		r.PrescribedTreatment = t
	}
	if err := h.svc.Create(c.Request().Context(), r); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{Status: Status(c.QueryParam("status"))}
	if p := c.QueryParam("patient_id"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &pid
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	u, err := DecodeUpdate(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Update(c.Request().Context(), id, u)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyDispensed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrMalformedPrescription), errors.Is(err, ErrEmptyPrescription):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
