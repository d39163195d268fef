package discharge

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/carepoint/hms/internal/domain/billing"
	"github.com/carepoint/hms/internal/domain/identity"
	"github.com/carepoint/hms/internal/domain/ward"
	"github.com/carepoint/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/discharge", h.Discharge, auth.RequireRole(auth.RoleAdmin))
	api.GET("/patients/:id/invoice", h.Invoice, auth.RequireSelfOrRole("id", auth.RoleDoctor))
}

type dischargeRequest struct {
	RoomChargePerDay decimal.Decimal `json:"room_charge_per_day"`
	DoctorFee        decimal.Decimal `json:"doctor_fee"`
	OtherCharge      decimal.Decimal `json:"other_charge"`
	MedicineCost     decimal.Decimal `json:"medicine_cost"`
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dischargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.Discharge(c.Request().Context(), Request{
		PatientID:        id,
		RoomChargePerDay: req.RoomChargePerDay,
		DoctorFee:        req.DoctorFee,
		OtherCharge:      req.OtherCharge,
		MedicineCost:     req.MedicineCost,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Invoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.Invoice(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, identity.ErrNotFound), errors.Is(err, billing.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateDischarge), errors.Is(err, ward.ErrNoRoomAssigned), errors.Is(err, billing.ErrBillFinalized):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNegativeAmount), errors.Is(err, billing.ErrNegativeAmount), errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
