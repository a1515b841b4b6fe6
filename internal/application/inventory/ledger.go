package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	stock "github.com/jhoicas/storefront-api/internal/domain/inventory"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Ledger libro de inventario: toda variación de stock deja un movimiento inmutable.
type Ledger struct {
	txRunner  repository.TxRunner
	movements repository.InventoryMovementRepository
	log       *logger.Logger
}

// NewLedger construye el libro. movements se usa solo para lecturas fuera de transacción.
func NewLedger(txRunner repository.TxRunner, movements repository.InventoryMovementRepository, log *logger.Logger) *Ledger {
	return &Ledger{txRunner: txRunner, movements: movements, log: log.Component("inventory_ledger")}
}

// MovementInput datos de un movimiento a registrar.
type MovementInput struct {
	TenantID  string
	ProductID int64
	Reason    string
	Change    int
	Reference string
}

func isKnownReason(r string) bool {
	switch r {
	case entity.MovementReasonSale, entity.MovementReasonAdjustment, entity.MovementReasonCancellationRestock:
		return true
	}
	return false
}

// RecordMovement agrega un movimiento usando el repositorio de la transacción del llamador,
// de modo que el movimiento y el cambio de stock se confirman o se descartan juntos.
func (l *Ledger) RecordMovement(ctx context.Context, movRepo repository.InventoryMovementRepository, in MovementInput) error {
	if in.Change == 0 {
		return domain.Validation("el movimiento debe tener un cambio distinto de cero",
			domain.FieldError{Field: "change", Message: "distinto de cero"})
	}
	if !isKnownReason(in.Reason) {
		return domain.Validation(fmt.Sprintf("motivo de movimiento desconocido %q", in.Reason),
			domain.FieldError{Field: "reason", Message: "sale | adjustment | cancellation-restock"})
	}
	mov := &entity.InventoryMovement{
		TenantID:  in.TenantID,
		ProductID: in.ProductID,
		Reason:    in.Reason,
		Change:    in.Change,
		Reference: in.Reference,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return fmt.Errorf("registrar movimiento: %w", err)
	}
	return nil
}

// AdjustInput ajuste manual de stock. Note es texto libre que queda en la referencia.
type AdjustInput struct {
	TenantID  string
	ProductID int64
	Change    int
	Note      string
}

// AdjustmentReference referencia del movimiento de un ajuste manual.
func AdjustmentReference(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return "adjust:manual"
	}
	return "adjust:" + note
}

// AdjustStock bloquea el producto, aplica el cambio y registra el movimiento en una sola transacción.
// Si el resultado sería negativo devuelve conflicto y el stock no cambia.
func (l *Ledger) AdjustStock(ctx context.Context, in AdjustInput) (*entity.Product, error) {
	if in.ProductID <= 0 {
		return nil, domain.Validation("productId es obligatorio", domain.FieldError{Field: "productId", Message: "requerido"})
	}
	if in.Change == 0 {
		return nil, domain.Validation("el cambio debe ser distinto de cero", domain.FieldError{Field: "change", Message: "distinto de cero"})
	}

	var updated *entity.Product
	err := l.txRunner.Run(ctx, func(repos repository.Repositories) error {
		product, err := repos.Products.GetForUpdate(ctx, in.TenantID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto no encontrado")
		}

		newStock, err := stock.ApplyChange(product.Stock, in.Change)
		if err != nil {
			return err
		}
		if err := repos.Products.SetStock(ctx, in.TenantID, in.ProductID, newStock); err != nil {
			return err
		}
		if err := l.RecordMovement(ctx, repos.Movements, MovementInput{
			TenantID:  in.TenantID,
			ProductID: in.ProductID,
			Reason:    entity.MovementReasonAdjustment,
			Change:    in.Change,
			Reference: AdjustmentReference(in.Note),
		}); err != nil {
			return err
		}
		product.Stock = newStock
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("tenant_id", in.TenantID).Int64("product_id", in.ProductID).
		Int("change", in.Change).Int("stock", updated.Stock).Msg("stock ajustado")
	return updated, nil
}

// ListMovements consulta el libro, más recientes primero.
func (l *Ledger) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	return l.movements.List(ctx, filter)
}
