package repository

import "github.com/jhoicas/Ventas-api/internal/domain/entity"

// BranchRepository lectura de sucursales.
type BranchRepository interface {
	GetByID(id string) (*entity.Branch, error)
}
