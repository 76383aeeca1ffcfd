package repository

import "github.com/jhoicas/Ventas-api/internal/domain/entity"

// ProductRepository lectura de productos del catálogo (CRUD fuera de este núcleo).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}
