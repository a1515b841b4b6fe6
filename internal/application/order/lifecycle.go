package order

import (
	"context"
	"fmt"

	appinventory "github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// LifecycleUseCase transiciones de estado, cancelación con reposición y borrado de pedidos.
type LifecycleUseCase struct {
	txRunner repository.TxRunner
	orders   repository.OrderRepository
	ledger   *appinventory.Ledger
	log      *logger.Logger
}

// NewLifecycleUseCase construye el caso de uso. orders se usa para lecturas fuera de transacción.
func NewLifecycleUseCase(txRunner repository.TxRunner, orders repository.OrderRepository, ledger *appinventory.Ledger, log *logger.Logger) *LifecycleUseCase {
	return &LifecycleUseCase{txRunner: txRunner, orders: orders, ledger: ledger, log: log.Component("order_lifecycle")}
}

// Get devuelve el pedido con cliente y líneas.
func (uc *LifecycleUseCase) Get(ctx context.Context, tenantID string, id int64) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("pedido no encontrado")
	}
	return o, nil
}

// List pedidos paginados, más recientes primero.
func (uc *LifecycleUseCase) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int, error) {
	if filter.Status != "" && !entity.IsValidOrderStatus(filter.Status) {
		return nil, 0, domain.Validation("estado desconocido", domain.FieldError{Field: "status", Message: "PENDING | CONFIRMED | COMPLETED | CANCELLED"})
	}
	return uc.orders.List(ctx, filter)
}

// UpdateStatus aplica la transición bajo bloqueo de la fila del pedido. Pedir el estado actual es un no-op.
// Cancelar repone el stock de cada línea y deja un movimiento cancellation-restock por línea.
func (uc *LifecycleUseCase) UpdateStatus(ctx context.Context, tenantID string, id int64, status string) (*entity.Order, error) {
	if !entity.IsValidOrderStatus(status) {
		return nil, domain.Validation("estado desconocido", domain.FieldError{Field: "status", Message: "PENDING | CONFIRMED | COMPLETED | CANCELLED"})
	}

	var result *entity.Order
	var from string
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("pedido no encontrado")
		}
		from = o.Status

		if o.Status != status {
			if !entity.CanTransition(o.Status, status) {
				return domain.Conflict(domain.ErrInvalidTransition,
					fmt.Sprintf("no se puede pasar un pedido de %s a %s", o.Status, status))
			}
			if status == entity.OrderStatusCancelled {
				if err := uc.restock(ctx, repos, o); err != nil {
					return err
				}
			}
			if err := repos.Orders.UpdateStatus(ctx, tenantID, id, status); err != nil {
				return err
			}
		}

		result, err = repos.Orders.GetByID(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if from != status {
		uc.log.Info().Str("tenant_id", tenantID).Int64("order_id", id).Str("from", from).Str("to", status).Msg("estado de pedido actualizado")
	}
	return result, nil
}

// restock devuelve al stock las cantidades de cada línea y registra los movimientos.
func (uc *LifecycleUseCase) restock(ctx context.Context, repos repository.Repositories, o *entity.Order) error {
	reference := entity.OrderReference(o.ID)
	for _, it := range o.Items {
		if _, err := repos.Products.IncrementStock(ctx, o.TenantID, it.ProductID, it.Quantity); err != nil {
			return err
		}
		if err := uc.ledger.RecordMovement(ctx, repos.Movements, appinventory.MovementInput{
			TenantID:  o.TenantID,
			ProductID: it.ProductID,
			Reason:    entity.MovementReasonCancellationRestock,
			Change:    it.Quantity,
			Reference: reference,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Delete elimina un pedido PENDING o CANCELLED (líneas primero). Un pedido PENDING todavía tiene su stock
// reservado, así que se repone antes de borrarlo; uno CANCELLED ya fue repuesto al cancelarse.
func (uc *LifecycleUseCase) Delete(ctx context.Context, tenantID string, id int64) error {
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("pedido no encontrado")
		}
		if !o.IsDeletable() {
			return domain.Conflict(domain.ErrOrderActive, "no se puede eliminar un pedido activo, cancélelo primero")
		}
		if o.Status == entity.OrderStatusPending {
			if err := uc.restock(ctx, repos, o); err != nil {
				return err
			}
		}
		if err := repos.Orders.DeleteItems(ctx, id); err != nil {
			return err
		}
		return repos.Orders.Delete(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("tenant_id", tenantID).Int64("order_id", id).Msg("pedido eliminado")
	return nil
}
