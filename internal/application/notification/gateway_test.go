package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/pkg/logger"
)

type countingMetrics struct{ sends map[Result]int }

func (m *countingMetrics) ObserveSend(r Result) { m.sends[r]++ }
func (m *countingMetrics) ObserveRetry(bool) {}

func newTestGateway(sender Sender, queue *fakeQueue, chatID string) (*Gateway, *countingMetrics) {
	m := &countingMetrics{sends: map[Result]int{}}
	g := NewGateway(sender, queue, GatewayConfig{ChatID: chatID, RetryDelay: time.Millisecond}, logger.Nop(), m)
	return g, m
}

func TestGateway_EntregaAlPrimerIntento(t *testing.T) {
	sender := &fakeSender{}
	g, m := newTestGateway(sender, &fakeQueue{}, "-100")

	res := g.Send(context.Background(), "hola <b>x</b>")

	assert.Equal(t, ResultDelivered, res)
	require.Equal(t, 1, sender.calls())
	var env Envelope
	require.NoError(t, json.Unmarshal(sender.payloads[0], &env))
	assert.Equal(t, Envelope{ChatID: "-100", Text: "hola <b>x</b>", ParseMode: "HTML"}, env)
	assert.Equal(t, 1, m.sends[ResultDelivered])
}

func TestGateway_ReintentoExitoso(t *testing.T) {
	sender := &fakeSender{errs: []error{errTelegram}}
	queue := &fakeQueue{}
	g, _ := newTestGateway(sender, queue, "-100")

	res := g.Send(context.Background(), "hola")

	assert.Equal(t, ResultDelivered, res)
	assert.Equal(t, 2, sender.calls())
	assert.Empty(t, queue.items)
}

func TestGateway_DosFallosSeEncola(t *testing.T) {
	sender := &fakeSender{errs: []error{errTelegram, errors.New("telegram: HTTP 500: caído")}}
	queue := &fakeQueue{}
	g, m := newTestGateway(sender, queue, "-100")

	res := g.Send(context.Background(), "hola")

	assert.Equal(t, ResultQueued, res)
	assert.Equal(t, 2, sender.calls())
	require.Len(t, queue.items, 1)
	assert.JSONEq(t, `{"chat_id":"-100","text":"hola","parse_mode":"HTML"}`, string(queue.items[0].Payload))
	assert.Equal(t, "telegram: HTTP 500: caído", queue.items[0].Error, "se guarda el error del segundo intento")
	assert.Zero(t, queue.items[0].Tries)
	assert.Equal(t, 1, m.sends[ResultQueued])
}

func TestGateway_ColaCaidaSePierde(t *testing.T) {
	sender := &fakeSender{errs: []error{errTelegram, errTelegram}}
	queue := &fakeQueue{enqueueErr: errors.New("conexión rechazada")}
	g, _ := newTestGateway(sender, queue, "-100")

	assert.Equal(t, ResultLost, g.Send(context.Background(), "hola"))
}

func TestGateway_NoConfigurado(t *testing.T) {
	sender := &fakeSender{}
	g, _ := newTestGateway(sender, &fakeQueue{}, "")

	assert.Equal(t, ResultSkipped, g.Send(context.Background(), "hola"))
	assert.Zero(t, sender.calls())

	g2 := NewGateway(nil, &fakeQueue{}, GatewayConfig{ChatID: "-100"}, logger.Nop(), nil)
	assert.False(t, g2.Enabled())
	assert.Equal(t, ResultSkipped, g2.Send(context.Background(), "hola"))
}

func TestGateway_ContextoCanceladoDuranteLaEsperaEncola(t *testing.T) {
	sender := &fakeSender{errs: []error{errTelegram}}
	queue := &fakeQueue{}
	g := NewGateway(sender, queue, GatewayConfig{ChatID: "-100", RetryDelay: time.Hour}, logger.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	res := g.Send(ctx, "hola")

	assert.Equal(t, ResultQueued, res, "la escritura en la cola no depende del contexto cancelado")
	assert.Equal(t, 1, sender.calls())
	require.Len(t, queue.items, 1)
	assert.Equal(t, context.Canceled.Error(), queue.items[0].Error)
}
