package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/lauritienda/backend-tienda/internal/common"
)

// Worker consumes notification tasks and sends the customer-facing emails.
type Worker struct {
	Mail common.EmailSender
	Log  zerolog.Logger
}

// Register attaches the worker's handlers to the asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderCreated, w.HandleOrderCreated)
}

// HandleOrderCreated sends the order confirmation email. Returning an error
// lets asynq retry with backoff.
func (w *Worker) HandleOrderCreated(ctx context.Context, t *asynq.Task) error {
	var p OrderCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("order created payload: %w: %w", err, asynq.SkipRetry)
	}
	if p.Email == "" {
		w.Log.Warn().Str("order_code", p.Code).Msg("order has no email, skipping confirmation")
		return nil
	}
	subject := fmt.Sprintf("Pedido %s confirmado", p.Code)
	body := fmt.Sprintf(
		"<p>¡Gracias por tu compra!</p><p>Tu pedido <strong>%s</strong> fue registrado por un total de $%.2f.</p>",
		p.Code, float64(p.Total)/100,
	)
	if err := w.Mail.Send(p.Email, subject, body); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", p.Code, err)
	}
	w.Log.Info().Str("order_code", p.Code).Msg("order confirmation sent")
	return nil
}
