package inventory

import (
	"fmt"

	"github.com/jhoicas/storefront-api/internal/domain"
)

// ApplyChange calcula el nuevo stock (servicio de dominio).
// NuevoStock = StockActual + Cambio; se rechaza si el resultado es negativo y el stock no cambia.
func ApplyChange(current, change int) (int, error) {
	candidate := current + change
	if candidate < 0 {
		return current, domain.Conflict(domain.ErrNegativeStock,
			fmt.Sprintf("stock actual %d, un cambio de %d dejaría el stock en negativo", current, change))
	}
	return candidate, nil
}

// RequiredByProduct agrega las cantidades pedidas por producto; un carrito puede repetir un producto
// en varias líneas y el stock debe alcanzar para la suma.
func RequiredByProduct[T any](items []T, key func(T) (int64, int)) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, it := range items {
		id, qty := key(it)
		out[id] += qty
	}
	return out
}
