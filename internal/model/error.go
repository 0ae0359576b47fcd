package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeUnavailable     = "PRODUCT_UNAVAILABLE"
	ErrCodeOrderNotFound   = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity = "INVALID_QUANTITY"
	ErrCodeInvalidTable    = "INVALID_TABLE"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
	ErrCodeTotalMismatch   = "TOTAL_MISMATCH"
	ErrCodePriceMismatch   = "PRICE_MISMATCH"
	ErrCodeEmptyOrder      = "EMPTY_ORDER"
	ErrCodeUnauthorised    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrUnavailable     = NewDomainError(ErrCodeUnavailable, "One or more products are not available")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidTable    = NewDomainError(ErrCodeInvalidTable, "Table number is out of range")
	ErrInvalidStatus   = NewDomainError(ErrCodeInvalidStatus, "Status must be one of pending, preparing, prepared, served")
	ErrTotalMismatch   = NewDomainError(ErrCodeTotalMismatch, "Total price does not match the order lines")
	ErrPriceMismatch   = NewDomainError(ErrCodePriceMismatch, "Item price does not match the menu")
	ErrEmptyOrder      = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
)
