package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// Invariante de reconciliación: para cada (producto, sucursal), plegar los
// deltas del libro sobre la cantidad inicial reproduce la cantidad viva.
// Se ejercita con una jornada completa: compra, venta, devolución, traslado y baja.
func TestLibro_ReconciliaTrasJornadaCompleta(t *testing.T) {
	f := transferFixture()
	f.addProduct("p2", "Azúcar 1kg", "4.00")
	ctx := context.Background()

	// Compra inicial: crea las filas de stock.
	_, err := f.registerMovementUC().RegisterMovement(ctx, ledger.MovementInput{
		ProductID: "p1", BranchID: "b1", Type: entity.MovementTypePURCHASE,
		Quantity: dec("20"), CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)
	_, err = f.registerMovementUC().RegisterMovement(ctx, ledger.MovementInput{
		ProductID: "p2", BranchID: "b1", Type: entity.MovementTypePURCHASE,
		Quantity: dec("10"), CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)

	// Venta multi-línea.
	sale, err := f.createSaleUC().CreateSale(ctx, ledger.CreateSaleInput{
		BranchID: "b1", PaymentMethod: "CASH", CreatedBy: "cajero1",
		Items: []ledger.SaleLineInput{
			{ProductID: "p1", Quantity: dec("5"), UnitPrice: dec("12.50")},
			{ProductID: "p2", Quantity: dec("3"), UnitPrice: dec("4.00")},
		},
	})
	require.NoError(t, err)

	// Devolución parcial contra la venta.
	_, err = f.returnExchangeUC().CreateExchangeOrReturnSale(ctx, ledger.ReturnExchangeInput{
		OriginalSaleID: sale.ID, BranchID: "b1", CreatedBy: "cajero1",
		ReturnedItems: []ledger.ReturnLineInput{{ProductID: "p1", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	// Traslado a la otra sucursal.
	_, err = f.transferUC().TransferStock(ctx, ledger.TransferInput{
		ProductID: "p1", FromBranchID: "b1", ToBranchID: "b2",
		Quantity: dec("6"), CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)

	// Baja por daño.
	_, err = f.registerMovementUC().RegisterMovement(ctx, ledger.MovementInput{
		ProductID: "p2", BranchID: "b1", Type: entity.MovementTypeDAMAGE,
		Quantity: dec("1"), Notes: "envase roto", CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)

	// Cada entrada es consistente consigo misma y los deltas pliegan a la
	// cantidad viva de cada (producto, sucursal).
	folded := make(map[string]decimal.Decimal)
	for _, mov := range f.movements() {
		assert.True(t, mov.NewQty.Equal(mov.PreviousQty.Add(mov.QuantityChange)),
			"movimiento %s: previa + delta debe dar la nueva", mov.MovementType)
		key := stockKey(mov.ProductID, mov.BranchID)
		folded[key] = folded[key].Add(mov.QuantityChange)
	}
	checks := []struct {
		productID, branchID string
		want                string
	}{
		{"p1", "b1", "11"}, // 20 - 5 + 2 - 6
		{"p1", "b2", "6"},
		{"p2", "b1", "6"}, // 10 - 3 - 1
	}
	for _, c := range checks {
		live := f.currentQty(c.productID, c.branchID)
		assert.True(t, live.Equal(dec(c.want)),
			"cantidad viva de %s en %s: esperada %s, quedó %s", c.productID, c.branchID, c.want, live)
		assert.True(t, folded[stockKey(c.productID, c.branchID)].Equal(live),
			"el pliegue del libro debe reproducir la cantidad viva de %s en %s", c.productID, c.branchID)
	}
}
