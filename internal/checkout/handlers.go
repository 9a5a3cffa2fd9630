package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/lauritienda/backend-tienda/internal/common"
	"github.com/lauritienda/backend-tienda/internal/coupon"
	"github.com/lauritienda/backend-tienda/internal/repo"
	"github.com/lauritienda/backend-tienda/internal/stock"
)

// Handler exposes checkout and order lookup endpoints.
type Handler struct {
	Svc     *Service
	Orders  repo.Orders
	Methods repo.PaymentMethods
	V       *validator.Validate
}

// Create handles a checkout request, mapping each business error kind to its
// HTTP status.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.V.Struct(in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "missing or invalid checkout fields", nil)
		return
	}

	out, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

// GetByCode returns a persisted order by its human-readable code.
func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	order, lines, found, err := h.Orders.GetByCode(r.Context(), code)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if !found {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return
	}

	outLines := make([]OutputLine, len(lines))
	for i, l := range lines {
		outLines[i] = OutputLine{
			ProductID: l.ProductID,
			SizeID:    l.SizeID,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Subtotal,
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Output{
		Code:         order.Code,
		Subtotal:     order.Subtotal,
		Discount:     order.Discount,
		ShippingCost: order.ShippingCost,
		Total:        order.Total,
		Status:       order.Status,
		Lines:        outLines,
	}})
}

// PaymentMethods lists the payment options offered at checkout.
func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Methods.ListActive(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load payment methods", nil)
		return
	}

	type methodOut struct {
		ID   int64  `json:"id"`
		Name string `json:"nombre"`
	}
	out := make([]methodOut, len(methods))
	for i, m := range methods {
		out[i] = methodOut{ID: m.ID, Name: m.Name}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *stock.InsufficientStockError
	if errors.As(err, &stockErr) {
		common.JSONError(w, http.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error(), map[string]any{
			"product_id": stockErr.ProductID,
			"size_id":    stockErr.SizeID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
		return
	}
	var couponErr *coupon.Error
	if errors.As(err, &couponErr) {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_COUPON", couponErr.Error(), map[string]any{
			"reason": string(couponErr.Reason),
		})
		return
	}
	if errors.Is(err, ErrUnknownReference) {
		common.JSONError(w, http.StatusBadRequest, "UNKNOWN_REFERENCE", err.Error(), nil)
		return
	}
	h.Svc.Log.Error().Err(err).Str("path", r.URL.Path).Msg("checkout failed")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
}
