package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrReturnExceeded      = errors.New("la cantidad devuelta excede la cantidad original")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, la operación puede reintentarse")
)
