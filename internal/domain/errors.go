package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio. La capa HTTP decide el status a partir del Kind,
// nunca a partir del texto del mensaje.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// FieldError detalle de validación de un campo concreto.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error error de dominio etiquetado (sin dependencias externas).
type Error struct {
	Kind    Kind
	Code    string // código estable para clientes, ej. INSUFFICIENT_STOCK
	Message string // texto legible para humanos
	Fields  []FieldError
	Err     error // causa interna; nunca se expone fuera de development
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind y Code, de modo que errors.Is(err, domain.ErrNotFound) funciona
// aunque el error se haya construido con otro mensaje.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Errores de dominio reutilizables.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "recurso no encontrado"}
	ErrInvalidInput      = &Error{Kind: KindValidation, Code: "VALIDATION", Message: "entrada inválida"}
	ErrDuplicate         = &Error{Kind: KindConflict, Code: "DUPLICATE", Message: "recurso duplicado"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "no autorizado"}
	ErrInsufficientStock = &Error{Kind: KindConflict, Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	ErrNegativeStock     = &Error{Kind: KindConflict, Code: "NEGATIVE_STOCK", Message: "el ajuste dejaría el stock en negativo"}
	ErrProductNotFound   = &Error{Kind: KindConflict, Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"}
	ErrTenantCollision   = &Error{Kind: KindConflict, Code: "CUSTOMER_TENANT_CONFLICT", Message: "el teléfono pertenece a un cliente de otra cuenta"}
	ErrInvalidTransition = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"}
	ErrOrderActive       = &Error{Kind: KindConflict, Code: "ORDER_ACTIVE", Message: "no se puede eliminar un pedido activo, cancélelo primero"}
	ErrProductInUse      = &Error{Kind: KindConflict, Code: "PRODUCT_IN_USE", Message: "el producto tiene pedidos o movimientos asociados"}
	ErrTooManyAttempts   = &Error{Kind: KindRateLimited, Code: "TOO_MANY_ATTEMPTS", Message: "demasiados intentos fallidos, intente más tarde"}
)

// Validation construye un error de validación con detalle por campo.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION", Message: message, Fields: fields}
}

// NotFound construye un not-found con mensaje propio (mismo código para ausente o de otro tenant).
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: message}
}

// Conflict construye un conflicto a partir de uno de los errores base, con mensaje propio.
func Conflict(base *Error, message string) *Error {
	return &Error{Kind: KindConflict, Code: base.Code, Message: message}
}

// Internal envuelve un error inesperado (store, red).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "error interno", Err: err}
}

// KindOf devuelve el Kind de err; cualquier error no etiquetado es interno.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError devuelve el *Error de la cadena o lo envuelve como interno.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Internal(err)
}
