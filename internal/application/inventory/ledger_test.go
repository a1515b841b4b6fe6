package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/application/apptest"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

func newLedger(t *testing.T) (*Ledger, *apptest.Store) {
	t.Helper()
	store := apptest.NewStore()
	return NewLedger(store, store.Repos().Movements, logger.Nop()), store
}

func TestAdjustStock_SumaYRegistraMovimiento(t *testing.T) {
	l, store := newLedger(t)
	p := store.SeedProduct(entity.Product{TenantID: "t1", Title: "Plate", Price: decimal.NewFromInt(10), Stock: 8})

	got, err := l.AdjustStock(context.Background(), AdjustInput{TenantID: "t1", ProductID: p.ID, Change: 5, Note: "restock"})

	require.NoError(t, err)
	assert.Equal(t, 13, got.Stock)
	assert.Equal(t, 13, store.Stock(p.ID))
	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementReasonAdjustment, movs[0].Reason)
	assert.Equal(t, 5, movs[0].Change)
	assert.Equal(t, "adjust:restock", movs[0].Reference)
	assert.NotEmpty(t, movs[0].ID)
}

func TestAdjustStock_NegativoRechazadoSinCambios(t *testing.T) {
	l, store := newLedger(t)
	p := store.SeedProduct(entity.Product{TenantID: "t1", Title: "Plate", Price: decimal.NewFromInt(10), Stock: 8})

	_, err := l.AdjustStock(context.Background(), AdjustInput{TenantID: "t1", ProductID: p.ID, Change: -20})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.Equal(t, 8, store.Stock(p.ID))
	assert.Empty(t, store.Movements())
}

func TestAdjustStock_CambioCeroEsValidacion(t *testing.T) {
	l, store := newLedger(t)
	p := store.SeedProduct(entity.Product{TenantID: "t1", Title: "Plate", Price: decimal.NewFromInt(10), Stock: 8})

	_, err := l.AdjustStock(context.Background(), AdjustInput{TenantID: "t1", ProductID: p.ID, Change: 0})

	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestAdjustStock_OtroTenantEsNotFound(t *testing.T) {
	l, store := newLedger(t)
	p := store.SeedProduct(entity.Product{TenantID: "t2", Title: "Plate", Price: decimal.NewFromInt(10), Stock: 8})

	_, err := l.AdjustStock(context.Background(), AdjustInput{TenantID: "t1", ProductID: p.ID, Change: 1})

	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, 8, store.Stock(p.ID))
}

func TestAdjustStock_FalloDelLibroRevierteElStock(t *testing.T) {
	l, store := newLedger(t)
	p := store.SeedProduct(entity.Product{TenantID: "t1", Title: "Plate", Price: decimal.NewFromInt(10), Stock: 8})
	store.FailMovementCreate = errors.New("disco lleno")

	_, err := l.AdjustStock(context.Background(), AdjustInput{TenantID: "t1", ProductID: p.ID, Change: 3})

	require.Error(t, err)
	assert.Equal(t, 8, store.Stock(p.ID), "stock y movimiento se confirman juntos o ninguno")
}

func TestRecordMovement_MotivoDesconocido(t *testing.T) {
	l, store := newLedger(t)
	err := l.RecordMovement(context.Background(), store.Repos().Movements, MovementInput{TenantID: "t1", ProductID: 1, Reason: "robo", Change: -1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestListMovements_FiltraPorProducto(t *testing.T) {
	l, store := newLedger(t)
	a := store.SeedProduct(entity.Product{TenantID: "t1", Title: "A", Price: decimal.NewFromInt(1), Stock: 1})
	b := store.SeedProduct(entity.Product{TenantID: "t1", Title: "B", Price: decimal.NewFromInt(1), Stock: 1})
	ctx := context.Background()
	_, err := l.AdjustStock(ctx, AdjustInput{TenantID: "t1", ProductID: a.ID, Change: 1})
	require.NoError(t, err)
	_, err = l.AdjustStock(ctx, AdjustInput{TenantID: "t1", ProductID: b.ID, Change: 2})
	require.NoError(t, err)

	movs, err := l.ListMovements(ctx, repository.MovementFilter{TenantID: "t1", ProductID: b.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 2, movs[0].Change)

	all, err := l.ListMovements(ctx, repository.MovementFilter{TenantID: "t1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAdjustmentReference(t *testing.T) {
	assert.Equal(t, "adjust:manual", AdjustmentReference("  "))
	assert.Equal(t, "adjust:damaged", AdjustmentReference("damaged"))
}
