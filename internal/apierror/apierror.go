// Package apierror provides standardized error types and response envelopes
// for the API. All errors returned to clients go through this package to
// ensure consistency and to prevent leaking internal details (stack traces,
// DB errors, etc.). Services return the typed errors below; handlers map
// them to HTTP status codes with errors.As.
package apierror

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Envelope is the canonical response body for every mutating endpoint:
// {success, message?, data?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK wraps a successful mutation result.
func OK(data interface{}) *Envelope {
	return &Envelope{Success: true, Data: data}
}

// OKMsg wraps a successful mutation with a user-facing message.
func OKMsg(msg string, data interface{}) *Envelope {
	return &Envelope{Success: true, Message: msg, Data: data}
}

// New builds an error envelope with a single message.
func New(msg string) *Envelope {
	return &Envelope{Success: false, Message: msg}
}

// ─── Error taxonomy ──────────────────────────────────────────────────────────

// ValidationError collects one or more human-readable violations of a
// malformed request. It never implies any state was mutated.
type ValidationError struct {
	Violations []string
}

func NewValidation(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return "validacion: " + strings.Join(e.Violations, "; ")
}

// StockFaltante names one product whose origin stock cannot cover the
// requested quantity.
type StockFaltante struct {
	ProductoID uuid.UUID `json:"producto_id"`
	Producto   string    `json:"producto"`
	Solicitado int       `json:"solicitado"`
	Disponible int       `json:"disponible"`
}

// InsufficientStockError aborts an enviar whose origin lacks stock for one or
// more lines. No partial deduction is ever applied.
type InsufficientStockError struct {
	Faltantes []StockFaltante
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Faltantes))
	for _, f := range e.Faltantes {
		parts = append(parts, fmt.Sprintf("%s: solicitado %d, disponible %d", f.Producto, f.Solicitado, f.Disponible))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// InvalidStateTransitionError signals an operation attempted from an estado
// that does not permit it.
type InvalidStateTransitionError struct {
	Estado    string
	Operacion string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("no se puede %s una transferencia en estado %s", e.Operacion, e.Estado)
}

// NotFoundError signals a missing record.
type NotFoundError struct {
	Recurso string
	ID      uuid.UUID
}

func (e *NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return e.Recurso + " no encontrado"
	}
	return fmt.Sprintf("%s %s no encontrado", e.Recurso, e.ID)
}
