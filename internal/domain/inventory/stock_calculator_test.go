package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/inventory"
)

func TestApplyChange(t *testing.T) {
	got, err := inventory.ApplyChange(10, -2)
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	got, err = inventory.ApplyChange(8, 5)
	require.NoError(t, err)
	assert.Equal(t, 13, got)

	got, err = inventory.ApplyChange(8, -8)
	require.NoError(t, err)
	assert.Equal(t, 0, got, "llegar exactamente a cero está permitido")
}

func TestApplyChange_NegativoRechazado(t *testing.T) {
	got, err := inventory.ApplyChange(8, -20)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, 8, got, "el stock queda sin cambios")
}

func TestRequiredByProduct(t *testing.T) {
	type line struct {
		id  int64
		qty int
	}
	req := inventory.RequiredByProduct([]line{{1, 2}, {2, 1}, {1, 3}}, func(l line) (int64, int) { return l.id, l.qty })
	assert.Equal(t, map[int64]int{1: 5, 2: 1}, req)
}
