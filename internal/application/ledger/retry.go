package ledger

import (
	"errors"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Reintentos acotados ante conflicto de concurrencia (fallas de serialización
// que PostgreSQL reporta como 40001/40P01). Cualquier otro error se propaga
// en el primer intento.
const (
	maxConflictAttempts = 3
	conflictBackoff     = 50 * time.Millisecond
)

// runWithConflictRetry ejecuta fn y la reintenta solo ante ErrConcurrencyConflict.
// fn debe ser re-ejecutable desde cero: cada intento abre su propia transacción.
func runWithConflictRetry(log *logger.Logger, operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt < maxConflictAttempts {
			log.Warn().
				Str("operation", operation).
				Int("attempt", attempt).
				Msg("conflicto de concurrencia, reintentando")
			time.Sleep(time.Duration(attempt) * conflictBackoff)
		}
	}
	return err
}
