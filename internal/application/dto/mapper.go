package dto

import "github.com/jhoicas/storefront-api/internal/domain/entity"

// NewProductResponse convierte la entidad; nil devuelve nil.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		HSN:         p.HSN,
		TaxRate:     p.TaxRate,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewProductList convierte una página de productos.
func NewProductList(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *NewProductResponse(p))
	}
	return out
}

func NewCustomerResponse(c *entity.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Type:      c.Type,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewOrderResponse convierte el pedido con cliente y líneas (si fueron cargados).
func NewOrderResponse(o *entity.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	resp := &OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Source:     o.Source,
		Status:     o.Status,
		Total:      o.Total,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Customer:   NewCustomerResponse(o.Customer),
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
			Product:   NewProductResponse(it.Product),
		})
	}
	return resp
}

func NewOrderList(list []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *NewOrderResponse(o))
	}
	return out
}

func NewMovementList(list []*entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Reason:    m.Reason,
			Change:    m.Change,
			Reference: m.Reference,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
