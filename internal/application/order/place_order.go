package order

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/inventory"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// CustomerInput datos del comprador; Phone identifica al cliente.
type CustomerInput struct {
	Name    string
	Phone   string
	Message string
}

// ItemInput línea solicitada.
type ItemInput struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// PlaceOrderInput pedido a colocar. Source vacío equivale a PUBLIC.
type PlaceOrderInput struct {
	TenantID string
	Customer CustomerInput
	Items    []ItemInput
	Source   string
}

// PlaceOrderUseCase motor transaccional de pedidos.
type PlaceOrderUseCase struct {
	txRunner       repository.TxRunner
	ledger         *appinventory.Ledger
	events         Events
	priceAuthority string
	log            *logger.Logger
}

// NewPlaceOrderUseCase construye el caso de uso. events puede ser nil (sin notificaciones).
func NewPlaceOrderUseCase(txRunner repository.TxRunner, ledger *appinventory.Ledger, events Events, priceAuthority string, log *logger.Logger) *PlaceOrderUseCase {
	if priceAuthority != PriceFromCatalog {
		priceAuthority = PriceFromClient
	}
	return &PlaceOrderUseCase{
		txRunner:       txRunner,
		ledger:         ledger,
		events:         events,
		priceAuthority: priceAuthority,
		log:            log.Component("place_order"),
	}
}

func validatePlaceOrder(in *PlaceOrderInput) error {
	var fields []domain.FieldError
	in.Customer.Phone = strings.TrimSpace(in.Customer.Phone)
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	if in.Customer.Phone == "" {
		fields = append(fields, domain.FieldError{Field: "customer.phone", Message: "requerido"})
	}
	if in.Source == "" {
		in.Source = entity.OrderSourcePublic
	}
	if in.Source != entity.OrderSourcePublic && in.Source != entity.OrderSourcePOS {
		fields = append(fields, domain.FieldError{Field: "source", Message: "debe ser PUBLIC o POS"})
	}
	if len(in.Items) == 0 {
		fields = append(fields, domain.FieldError{Field: "items", Message: "se requiere al menos una línea"})
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "debe ser positivo"})
		}
		if it.Quantity <= 0 {
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "debe ser mayor que cero"})
		}
		if !it.Price.IsPositive() {
			fields = append(fields, domain.FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "debe ser mayor que cero"})
		}
	}
	if len(fields) > 0 {
		return domain.Validation("pedido inválido", fields...)
	}
	return nil
}

// Execute valida, ejecuta el pedido completo en una transacción y, tras el commit, emite OrderPlaced.
// Devuelve el pedido releído con cliente y líneas (cada una con su producto ya descontado).
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, in PlaceOrderInput) (*entity.Order, error) {
	if err := validatePlaceOrder(&in); err != nil {
		return nil, err
	}

	var placed *entity.Order
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		customer := &entity.Customer{
			TenantID: in.TenantID,
			Name:     in.Customer.Name,
			Phone:    in.Customer.Phone,
			Type:     entity.CustomerTypeForSource(in.Source),
			Notes:    in.Customer.Message,
		}
		outcome, err := repos.Customers.UpsertByPhone(ctx, customer)
		if err != nil {
			return err
		}
		if outcome == entity.UpsertTenantCollision {
			return domain.Conflict(domain.ErrTenantCollision, "el teléfono ya está registrado en otra cuenta")
		}

		items, err := uc.lockAndPrice(ctx, repos.Products, in)
		if err != nil {
			return err
		}

		order := &entity.Order{
			TenantID:   in.TenantID,
			CustomerID: customer.ID,
			Source:     in.Source,
			Status:     entity.OrderStatusPending,
			Total:      entity.ComputeTotal(items),
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		reference := entity.OrderReference(order.ID)
		for _, it := range items {
			it.OrderID = order.ID
			if err := repos.Orders.CreateItem(ctx, it); err != nil {
				return err
			}
			if _, err := repos.Products.DecrementStock(ctx, in.TenantID, it.ProductID, it.Quantity); err != nil {
				return err
			}
			if err := uc.ledger.RecordMovement(ctx, repos.Movements, appinventory.MovementInput{
				TenantID:  in.TenantID,
				ProductID: it.ProductID,
				Reason:    entity.MovementReasonSale,
				Change:    -it.Quantity,
				Reference: reference,
			}); err != nil {
				return err
			}
		}

		placed, err = repos.Orders.GetByID(ctx, in.TenantID, order.ID)
		if err != nil {
			return err
		}
		if placed == nil {
			return domain.Internal(fmt.Errorf("pedido %d no visible tras crearlo", order.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("tenant_id", in.TenantID).Int64("order_id", placed.ID).Str("source", placed.Source).
		Str("total", placed.Total.StringFixed(2)).Int("items", len(placed.Items)).Msg("pedido creado")
	if uc.events != nil {
		uc.events.OrderPlaced(placed)
	}
	return placed, nil
}

// lockAndPrice bloquea cada producto distinto en orden ascendente de ID (evita interbloqueos entre pedidos
// concurrentes), verifica existencia y stock sobre la cantidad agregada, y arma las líneas en el orden recibido.
func (uc *PlaceOrderUseCase) lockAndPrice(ctx context.Context, products repository.ProductRepository, in PlaceOrderInput) ([]*entity.OrderItem, error) {
	required := inventory.RequiredByProduct(in.Items, func(it ItemInput) (int64, int) { return it.ProductID, it.Quantity })
	ids := make([]int64, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[int64]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := products.GetForUpdate(ctx, in.TenantID, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.Conflict(domain.ErrProductNotFound, fmt.Sprintf("producto %d no encontrado", id))
		}
		if p.Stock < required[id] {
			return nil, domain.Conflict(domain.ErrInsufficientStock,
				fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", p.Title, p.Stock, required[id]))
		}
		locked[id] = p
	}

	items := make([]*entity.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		price := it.Price
		if uc.priceAuthority == PriceFromCatalog {
			price = locked[it.ProductID].Price
		}
		items = append(items, &entity.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: price})
	}
	return items, nil
}
