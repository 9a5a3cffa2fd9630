package coupon

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/lauritienda/backend-tienda/internal/common"
)

// Handler exposes the public coupon validation endpoint.
type Handler struct {
	Applier Applier
	V       *validator.Validate
}

type validateRequest struct {
	Code     string `json:"codigo" validate:"required"`
	Subtotal int64  `json:"subtotal" validate:"gte=0"`
}

// Validate checks a coupon code against the current cart subtotal without
// consuming a use.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.V.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "código requerido", nil)
		return
	}

	c, err := h.Applier.Validate(r.Context(), req.Code, req.Subtotal, time.Now())
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			status := http.StatusUnprocessableEntity
			if cerr.Reason == ReasonNotFound {
				status = http.StatusNotFound
			}
			common.JSONError(w, status, "INVALID_COUPON", cerr.Error(), map[string]any{
				"reason": string(cerr.Reason),
			})
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to validate coupon", nil)
		return
	}

	common.JSON(w, http.StatusOK, map[string]any{
		"valido": true,
		"promo": map[string]any{
			"id":             c.ID,
			"kind":           c.Kind,
			"value":          c.Value,
			"free_shipping":  c.FreeShipping,
			"minimum_spend":  c.MinimumSpend,
			"remaining_uses": remainingUses(c.MaxUses, c.Uses),
		},
	})
}

func remainingUses(max *int32, uses int32) any {
	if max == nil {
		return nil
	}
	left := *max - uses
	if left < 0 {
		left = 0
	}
	return left
}
