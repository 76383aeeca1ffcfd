package repository

import "github.com/jhoicas/Ventas-api/internal/domain/entity"

// CustomerRepository lectura de clientes.
type CustomerRepository interface {
	GetByID(id string) (*entity.Customer, error)
}
