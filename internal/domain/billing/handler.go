package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

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
	read := api.Group("", auth.RequireRole(auth.RoleDoctor))
	read.GET("/bills", h.ListBills)
	read.GET("/bills/:id", h.GetBill)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("/bills", h.CreateBill)
	write.POST("/bills/:id/charges", h.AddCharges)
	write.POST("/bills/:id/payments", h.ApplyPayment)
}

type createBillRequest struct {
	PatientID       uuid.UUID       `json:"patient_id"`
	MedicalRecordID *uuid.UUID      `json:"medical_record_id"`
	TreatmentCost   decimal.Decimal `json:"treatment_cost"`
	MedicineCost    decimal.Decimal `json:"medicine_cost"`
}

func (h *Handler) CreateBill(c echo.Context) error {
	var req createBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b := &Bill{
		PatientID:       req.PatientID,
		MedicalRecordID: req.MedicalRecordID,
		TreatmentCost:   req.TreatmentCost,
		MedicineCost:    req.MedicineCost,
	}
	if err := h.svc.CreateBill(c.Request().Context(), b); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBills(c echo.Context) error {
	pid, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id query parameter is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type chargesRequest struct {
	TreatmentCost decimal.Decimal `json:"treatment_cost"`
	MedicineCost  decimal.Decimal `json:"medicine_cost"`
}

func (h *Handler) AddCharges(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req chargesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.Accumulate(c.Request().Context(), id, req.TreatmentCost, req.MedicineCost)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) ApplyPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, paid, err := h.svc.ApplyPayment(c.Request().Context(), id, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"bill": b, "paid": paid})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBillFinalized), errors.Is(err, ErrOpenBillExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNegativeAmount), errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
