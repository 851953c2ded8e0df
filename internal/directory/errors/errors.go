package errors

import (
	"fmt"
)

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrInvalidRecord      = fmt.Errorf("invalid record")
	ErrIndexNotReady      = fmt.Errorf("search index not ready")
	ErrMalformedQuery     = fmt.Errorf("malformed query")
	ErrCatalogUnavailable = fmt.Errorf("catalog unavailable")
)
