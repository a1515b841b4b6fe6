package order

import "github.com/jhoicas/storefront-api/internal/domain/entity"

// Events recibe los pedidos ya confirmados en la base. Se invoca después del commit y no debe bloquear.
type Events interface {
	OrderPlaced(order *entity.Order)
}

// Autoridad del precio de línea.
const (
	PriceFromClient  = "client"
	PriceFromCatalog = "catalog"
)
