package catalog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrUnknownEventKey              = errors.New("unknown event key")
	ErrInvalidCatalog               = errors.New("invalid catalog")
	ErrInvalidCatalogClassification = errors.New("bucket classified as both scoring and error")
)
