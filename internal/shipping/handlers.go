package shipping

import (
	"context"
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/lauritienda/backend-tienda/internal/common"
)

// LineRef is a cart entry as the client sends it.
type LineRef struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	SizeID    int64 `json:"size_id"`
	Qty       int   `json:"quantity" validate:"required,gt=0"`
}

// CartResolver maps client cart references onto priced, categorised lines.
// Unknown product references are skipped, not failed: shipping estimation
// degrades to the default parcel profile.
type CartResolver interface {
	ResolveLines(ctx context.Context, refs []LineRef) ([]Line, error)
}

// Handler exposes the shipping quotation endpoint.
type Handler struct {
	Svc      *Service
	Resolver CartResolver
	V        *validator.Validate
}

type quoteRequest struct {
	PostalCode string    `json:"codigo_postal" validate:"required,min=4,max=8,numeric"`
	Lines      []LineRef `json:"lines" validate:"dive"`
}

// Quote returns the ordered shipping options for a destination postal code.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.V.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "código postal es requerido", nil)
		return
	}

	var lines []Line
	if h.Resolver != nil && len(req.Lines) > 0 {
		resolved, err := h.Resolver.ResolveLines(r.Context(), req.Lines)
		if err != nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to resolve cart", nil)
			return
		}
		lines = resolved
	}

	rates, err := h.Svc.Quote(r.Context(), req.PostalCode, lines)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to quote shipping", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rates})
}
