package notification

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

type recordingGateway struct {
	mu    sync.Mutex
	texts []string
}

func (g *recordingGateway) Send(_ context.Context, text string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.texts = append(g.texts, text)
	return ResultDelivered
}

func TestOrderNotifier_PedidoYAlertasDistintas(t *testing.T) {
	low := &entity.Product{ID: 1, Title: "Plate", Stock: 2}
	ok := &entity.Product{ID: 2, Title: "Bowl", Stock: 50}
	order := &entity.Order{
		ID: 9, Source: entity.OrderSourcePublic, CreatedAt: time.Now(),
		Customer: &entity.Customer{Name: "A", Phone: "1"},
		Items: []*entity.OrderItem{
			{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10), Product: low},
			{ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(10), Product: ok},
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(10), Product: low},
		},
	}
	gw := &recordingGateway{}
	n := NewOrderNotifier(gw, 5, logger.Nop())

	n.OrderPlaced(order)
	require.NoError(t, n.Wait(context.Background()))

	require.Len(t, gw.texts, 2, "una confirmación y una sola alerta para el producto repetido")
	assert.Contains(t, gw.texts[0], "Order #9")
	assert.True(t, strings.Contains(gw.texts[1], "LOW STOCK ALERT") && strings.Contains(gw.texts[1], "Plate"))
}

func TestLowStockProducts_UmbralInclusivo(t *testing.T) {
	items := []*entity.OrderItem{
		{ProductID: 1, Product: &entity.Product{ID: 1, Stock: 5}},
		{ProductID: 2, Product: &entity.Product{ID: 2, Stock: 6}},
		{ProductID: 3},
	}
	got := LowStockProducts(items, 5)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0].ID)
}

type blockingGateway struct{ release chan struct{} }

func (g *blockingGateway) Send(ctx context.Context, _ string) Result {
	<-g.release
	return ResultDelivered
}

func TestOrderNotifier_WaitRespetaElContexto(t *testing.T) {
	gw := &blockingGateway{release: make(chan struct{})}
	n := NewOrderNotifier(gw, 5, logger.Nop())
	n.OrderPlaced(&entity.Order{ID: 1, Customer: &entity.Customer{}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Wait(ctx), context.DeadlineExceeded)

	close(gw.release)
	assert.NoError(t, n.Wait(context.Background()))
}
