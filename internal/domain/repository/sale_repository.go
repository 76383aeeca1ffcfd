package repository

import "github.com/jhoicas/Ventas-api/internal/domain/entity"

// SaleRepository persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error)
	// GetByIdempotencyKey devuelve la venta ya creada con esa clave, o nil.
	GetByIdempotencyKey(key string) (*entity.Sale, error)
	// TransitionStatus cambia el estado solo si el actual coincide con from;
	// si no coincide (otro worker ganó la transición) devuelve ErrConflict.
	TransitionStatus(id, from, to string) error
}
