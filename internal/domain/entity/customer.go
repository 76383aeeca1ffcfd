package entity

import "time"

// Customer representa un cliente. Opcional en ventas de mostrador.
type Customer struct {
	ID        string
	Name      string
	Document  string
	Email     string
	Phone     string
	CreatedAt time.Time
}
