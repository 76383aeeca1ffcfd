package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

func movementFixture() *fixture {
	f := newFixture()
	f.addBranch("b1", "Sucursal Centro")
	f.addProduct("p1", "Café 500g", "12.50")
	return f
}

// Una compra crea la fila de stock en la primera recepción.
func TestRegisterMovement_CompraCreaLaFila(t *testing.T) {
	f := movementFixture()
	uc := f.registerMovementUC()

	mov, err := uc.RegisterMovement(context.Background(), ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "b1",
		Type:      entity.MovementTypePURCHASE,
		Quantity:  dec("5"),
		CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)
	require.NotNil(t, mov)

	assert.Equal(t, entity.MovementTypePURCHASE, mov.MovementType)
	assert.True(t, mov.PreviousQty.Equal(dec("0")))
	assert.True(t, mov.NewQty.Equal(dec("5")))
	assert.True(t, f.currentQty("p1", "b1").Equal(dec("5")))
}

// Una compra sobre una fila en déficit se acepta aunque el resultado siga en
// negativo: la recepción acerca la cantidad a cero.
func TestRegisterMovement_CompraSobreDeficit(t *testing.T) {
	f := movementFixture()
	f.seedStock("p1", "b1", "-5", "0")

	mov, err := f.registerMovementUC().RegisterMovement(context.Background(), ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "b1",
		Type:      entity.MovementTypePURCHASE,
		Quantity:  dec("2"),
		CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)
	assert.True(t, mov.PreviousQty.Equal(dec("-5")))
	assert.True(t, mov.NewQty.Equal(dec("-3")))
	assert.True(t, f.currentQty("p1", "b1").Equal(dec("-3")))
}

// Un ajuste con signo puede dejar la cantidad en negativo: corrige el conteo real.
func TestRegisterMovement_AjusteNegativoPermitido(t *testing.T) {
	f := movementFixture()
	f.seedStock("p1", "b1", "2", "0")

	mov, err := f.registerMovementUC().RegisterMovement(context.Background(), ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "b1",
		Type:      entity.MovementTypeADJUSTMENT,
		Quantity:  dec("-5"),
		Notes:     "conteo físico",
		CreatedBy: "supervisor1",
	})
	require.NoError(t, err)
	assert.True(t, mov.NewQty.Equal(dec("-3")))
	assert.True(t, f.currentQty("p1", "b1").Equal(dec("-3")))
}

// Una baja por daño exige stock suficiente y registra el delta en negativo.
func TestRegisterMovement_Damage(t *testing.T) {
	f := movementFixture()
	f.seedStock("p1", "b1", "4", "0")
	uc := f.registerMovementUC()

	mov, err := uc.RegisterMovement(context.Background(), ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "b1",
		Type:      entity.MovementTypeDAMAGE,
		Quantity:  dec("3"),
		Notes:     "rotura en bodega",
		CreatedBy: "bodeguero1",
	})
	require.NoError(t, err)
	assert.True(t, mov.QuantityChange.Equal(dec("-3")))
	assert.True(t, f.currentQty("p1", "b1").Equal(dec("1")))

	_, err = uc.RegisterMovement(context.Background(), ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "b1",
		Type:      entity.MovementTypeDAMAGE,
		Quantity:  dec("2"),
		CreatedBy: "bodeguero1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.currentQty("p1", "b1").Equal(dec("1")), "la baja rechazada no muta")
}

func TestRegisterMovement_ValidacionEntrada(t *testing.T) {
	f := movementFixture()
	uc := f.registerMovementUC()
	ctx := context.Background()

	cases := []struct {
		name string
		in   ledger.MovementInput
	}{
		{"tipo desconocido", ledger.MovementInput{
			ProductID: "p1", BranchID: "b1", Type: "SALE", Quantity: dec("1"), CreatedBy: "x",
		}},
		{"compra con cantidad cero", ledger.MovementInput{
			ProductID: "p1", BranchID: "b1", Type: entity.MovementTypePURCHASE, Quantity: dec("0"), CreatedBy: "x",
		}},
		{"compra negativa", ledger.MovementInput{
			ProductID: "p1", BranchID: "b1", Type: entity.MovementTypePURCHASE, Quantity: dec("-1"), CreatedBy: "x",
		}},
		{"ajuste en cero", ledger.MovementInput{
			ProductID: "p1", BranchID: "b1", Type: entity.MovementTypeADJUSTMENT, Quantity: dec("0"), CreatedBy: "x",
		}},
		{"daño con cantidad cero", ledger.MovementInput{
			ProductID: "p1", BranchID: "b1", Type: entity.MovementTypeDAMAGE, Quantity: dec("0"), CreatedBy: "x",
		}},
		{"sin autor", ledger.MovementInput{
			ProductID: "p1", BranchID: "b1", Type: entity.MovementTypePURCHASE, Quantity: dec("1"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegisterMovement_SucursalDesconocida(t *testing.T) {
	f := movementFixture()
	_, err := f.registerMovementUC().RegisterMovement(context.Background(), ledger.MovementInput{
		ProductID: "p1",
		BranchID:  "nope",
		Type:      entity.MovementTypePURCHASE,
		Quantity:  dec("1"),
		CreatedBy: "bodeguero1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
