package pharmacy

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/carepoint/hms/internal/domain/medrecord"
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
	staff := api.Group("", auth.RequireRole(auth.RolePharmacist))
	staff.GET("/pharmacies", h.List)
	staff.GET("/pharmacies/:id", h.Get)
	staff.GET("/pharmacies/:id/stock/:medicine", h.CheckStock)
	staff.POST("/pharmacies/:id/medicines", h.UpdateMedicineList)
	staff.POST("/pharmacies/:id/dispense", h.Dispense)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/pharmacies", h.Create)
}

func (h *Handler) Create(c echo.Context) error {
	var p Pharmacy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, &p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CheckStock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	medicine := c.Param("medicine")
	qty, err := h.svc.CheckStock(c.Request().Context(), id, medicine)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"medicine": medicine, "quantity": qty})
}

type medicineRequest struct {
	Name     string          `json:"name"`
	Quantity *int            `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// UpdateMedicineList answers {"success": false} for rejected values rather
// than an error body, matching what stock clients expect.
func (h *Handler) UpdateMedicineList(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req medicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// quantity 0 removes the medicine, so an omitted field must not default to it
	if req.Quantity == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"success": false, "error": "quantity is required"})
	}
	err = h.svc.UpdateMedicineList(c.Request().Context(), id, req.Name, *req.Quantity, req.Price)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidInput):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"success": false, "error": err.Error()})
	default:
		return mapError(err)
	}
}

type dispenseRequest struct {
	PrescriptionID uuid.UUID `json:"prescription_id"`
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dispenseRequest
	if err := c.Bind(&req); err != nil || req.PrescriptionID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "prescription_id is required")
	}
	res, err := h.svc.Dispense(c.Request().Context(), id, req.PrescriptionID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, medrecord.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, medrecord.ErrAlreadyDispensed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrMedicineNotFound):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, medrecord.ErrMalformedPrescription), errors.Is(err, medrecord.ErrEmptyPrescription),
		errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidPrice):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
