package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// La primera lectura va a la base y puebla el caché; la segunda sale del caché.
func TestGetStock_LecturaConCache(t *testing.T) {
	f := movementFixture()
	f.seedStock("p1", "b1", "7", "2")
	uc := f.queryUC()
	ctx := context.Background()

	first, err := uc.GetStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.True(t, first.CurrentQuantity.Equal(dec("7")))
	assert.Equal(t, 1, f.cache.misses)
	assert.Equal(t, 1, f.cache.sets)

	second, err := uc.GetStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.True(t, second.CurrentQuantity.Equal(dec("7")))
	assert.Equal(t, 1, f.cache.hits)
}

// Una fila inexistente responde en cero en lugar de error: la fila real se
// crea recién con el primer movimiento.
func TestGetStock_FilaInexistenteEnCero(t *testing.T) {
	f := movementFixture()
	stock, err := f.queryUC().GetStock(context.Background(), "p1", "b1")
	require.NoError(t, err)
	assert.True(t, stock.CurrentQuantity.IsZero())
	assert.Equal(t, "p1", stock.ProductID)
	assert.Equal(t, "b1", stock.BranchID)
}

// Tras una mutación el caché queda invalidado y la siguiente lectura ve el
// valor nuevo.
func TestGetStock_MutacionInvalidaYRefresca(t *testing.T) {
	f := movementFixture()
	f.seedStock("p1", "b1", "7", "0")
	query := f.queryUC()
	ctx := context.Background()

	_, err := query.GetStock(ctx, "p1", "b1")
	require.NoError(t, err)

	_, err = f.registerMovementUC().RegisterMovement(ctx, ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "b1",
		Type:      entity.MovementTypePURCHASE,
		Quantity:  dec("3"),
		CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)

	refreshed, err := query.GetStock(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.True(t, refreshed.CurrentQuantity.Equal(dec("10")),
		"la lectura posterior a la mutación no puede servir la instantánea vieja")
}

// El historial por producto llega más reciente primero y respeta limit/offset.
func TestListMovements_OrdenYPaginado(t *testing.T) {
	f := movementFixture()
	uc := f.registerMovementUC()
	ctx := context.Background()

	for _, qty := range []string{"1", "2", "3"} {
		_, err := uc.RegisterMovement(ctx, ledger.MovementInput{
			ProductID: "p1",
			BranchID:  "b1",
			Type:      entity.MovementTypePURCHASE,
			Quantity:  dec(qty),
			CreatedBy: "bodeguero1",
		})
		require.NoError(t, err)
	}

	movs, err := f.queryUC().ListMovementsByProduct(ctx, "p1", "b1", nil, nil, 2, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.True(t, movs[0].QuantityChange.Equal(dec("3")), "más reciente primero")
	assert.True(t, movs[1].QuantityChange.Equal(dec("2")))

	rest, err := f.queryUC().ListMovementsByProduct(ctx, "p1", "b1", nil, nil, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, rest[0].QuantityChange.Equal(dec("1")))
}
