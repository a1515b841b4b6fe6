package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

func seedQueue(n int, tries int) *fakeQueue {
	q := &fakeQueue{}
	for i := 0; i < n; i++ {
		q.nextID++
		q.items = append(q.items, &entity.NotificationQueueItem{ID: q.nextID, Payload: []byte(`{"chat_id":"1","text":"x","parse_mode":"HTML"}`), Tries: tries})
	}
	return q
}

func newTestWorker(q *fakeQueue, s Sender) *RetryWorker {
	return NewRetryWorker(q, s, WorkerConfig{Interval: time.Hour, ItemGap: time.Millisecond}, logger.Nop(), nil)
}

func TestRetryWorker_EntregaYBorra(t *testing.T) {
	q := seedQueue(3, 0)
	s := &fakeSender{}

	n, err := newTestWorker(q, s).ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, q.deleted)
	assert.Empty(t, q.items)
}

func TestRetryWorker_FalloIncrementaIntentosYTruncaError(t *testing.T) {
	q := seedQueue(1, 2)
	s := &fakeSender{errs: []error{assertErr(strings.Repeat("x", 800))}}

	n, err := newTestWorker(q, s).ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	require.Len(t, q.failed, 1)
	assert.Len(t, q.failed[0].msg, 500)
	assert.Equal(t, 3, q.items[0].Tries)
	assert.NotNil(t, q.items[0].LastTried)
}

func TestRetryWorker_IgnoraAgotados(t *testing.T) {
	q := seedQueue(2, 5)
	s := &fakeSender{}

	n, err := newTestWorker(q, s).ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, s.calls(), "los ítems con 5 intentos quedan en la tabla sin tocar")
	assert.Len(t, q.items, 2)
}

func TestRetryWorker_RespetaTamanoDeLote(t *testing.T) {
	q := seedQueue(25, 0)
	s := &fakeSender{}

	n, err := newTestWorker(q, s).ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Len(t, q.items, 5)
}

// cancelingSender cancela el contexto tras la primera entrega.
type cancelingSender struct {
	fakeSender
	cancel context.CancelFunc
}

func (s *cancelingSender) Send(ctx context.Context, payload []byte) error {
	err := s.fakeSender.Send(ctx, payload)
	s.cancel()
	return err
}

func TestRetryWorker_ApagadoAbandonaElResto(t *testing.T) {
	q := seedQueue(5, 0)
	ctx, cancel := context.WithCancel(context.Background())
	s := &cancelingSender{cancel: cancel}

	n, err := newTestWorker(q, s).ProcessBatch(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.calls())
	assert.Len(t, q.items, 4)
}

func TestRetryWorker_RunTerminaAlCancelar(t *testing.T) {
	q := seedQueue(1, 0)
	s := &fakeSender{}
	w := newTestWorker(q, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.calls() == 1 }, time.Second, 5*time.Millisecond,
		"procesa de inmediato al arrancar")
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
