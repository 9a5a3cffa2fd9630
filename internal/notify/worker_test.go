package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lauritienda/backend-tienda/internal/common"
)

func TestHandleOrderCreatedSendsEmail(t *testing.T) {
	t.Parallel()

	mail := &common.InMemoryEmail{}
	w := &Worker{Mail: mail, Log: zerolog.Nop()}

	payload, err := json.Marshal(OrderCreatedPayload{Code: "AA0042", Email: "cliente@example.com", Total: 1250000})
	require.NoError(t, err)

	err = w.HandleOrderCreated(context.Background(), asynq.NewTask(TypeOrderCreated, payload))
	require.NoError(t, err)
	require.Len(t, mail.Outbox, 1)
	require.Equal(t, "cliente@example.com", mail.Outbox[0].To)
	require.Contains(t, mail.Outbox[0].Subject, "AA0042")
}

func TestHandleOrderCreatedMissingEmailSkips(t *testing.T) {
	t.Parallel()

	mail := &common.InMemoryEmail{}
	w := &Worker{Mail: mail, Log: zerolog.Nop()}

	payload, _ := json.Marshal(OrderCreatedPayload{Code: "AA0042"})
	require.NoError(t, w.HandleOrderCreated(context.Background(), asynq.NewTask(TypeOrderCreated, payload)))
	require.Empty(t, mail.Outbox)
}

func TestHandleOrderCreatedBadPayloadSkipsRetry(t *testing.T) {
	t.Parallel()

	w := &Worker{Mail: common.NopEmailSender{}, Log: zerolog.Nop()}
	err := w.HandleOrderCreated(context.Background(), asynq.NewTask(TypeOrderCreated, []byte("{")))
	require.True(t, errors.Is(err, asynq.SkipRetry))
}
