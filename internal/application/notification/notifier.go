package notification

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// TextSender lo implementa Gateway.
type TextSender interface {
	Send(ctx context.Context, text string) Result
}

// dispatchTimeout cota de un despacho completo (pedido + alertas, con sus reintentos).
const dispatchTimeout = 30 * time.Second

// OrderNotifier despacha las notificaciones de un pedido ya confirmado en la base, fuera de la transacción.
// Cada despacho corre en una goroutine registrada; Wait espera a las pendientes durante el apagado.
type OrderNotifier struct {
	gateway   TextSender
	threshold int
	log       *logger.Logger
	wg        sync.WaitGroup
}

// NewOrderNotifier threshold es el umbral de stock bajo (inclusive).
func NewOrderNotifier(gateway TextSender, threshold int, log *logger.Logger) *OrderNotifier {
	return &OrderNotifier{gateway: gateway, threshold: threshold, log: log.Component("order_notifier")}
}

// OrderPlaced envía la confirmación del pedido y una alerta por cada producto distinto que quedó en o bajo el umbral.
// No bloquea al llamador.
func (n *OrderNotifier) OrderPlaced(order *entity.Order) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		n.dispatch(ctx, order)
	}()
}

func (n *OrderNotifier) dispatch(ctx context.Context, order *entity.Order) {
	res := n.gateway.Send(ctx, FormatOrderNotification(order, order.Customer, order.Items, order.Source))
	n.log.Debug().Int64("order_id", order.ID).Str("result", res.String()).Msg("notificación de pedido")

	for _, p := range LowStockProducts(order.Items, n.threshold) {
		res := n.gateway.Send(ctx, FormatLowStockNotification(p))
		n.log.Debug().Int64("product_id", p.ID).Int("stock", p.Stock).Str("result", res.String()).Msg("alerta de stock bajo")
	}
}

// LowStockProducts productos distintos de las líneas cuyo stock resultante es <= threshold, en orden de aparición.
func LowStockProducts(items []*entity.OrderItem, threshold int) []*entity.Product {
	seen := make(map[int64]bool, len(items))
	var out []*entity.Product
	for _, it := range items {
		if it.Product == nil || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		if it.Product.IsLowStock(threshold) {
			out = append(out, it.Product)
		}
	}
	return out
}

// Wait espera a que terminen los despachos en curso o a que ctx expire.
func (n *OrderNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
