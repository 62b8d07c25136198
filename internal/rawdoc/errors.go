package rawdoc

import (
	"errors"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
)

// Resolution failures. Their messages are the client-facing error strings.
// Both path checks collapse to ErrInvalidPath so callers cannot tell which one fired.
var (
	ErrMethodNotAllowed = derrors.MethodNotAllowedError("Method not allowed").Build()
	ErrNotFound         = derrors.NotFoundError("Not found").Build()
	ErrInvalidPath      = derrors.ValidationError("Invalid path").Build()
	ErrDocumentNotFound = derrors.NotFoundError("Document not found").Build()
)

// IsInvalidPath reports whether err is an InvalidPath failure.
func IsInvalidPath(err error) bool { return errors.Is(err, ErrInvalidPath) }

// IsNotFound reports whether err is either NotFound failure (no slug or no candidate).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDocumentNotFound)
}

// IsMethodNotAllowed reports whether err is a MethodNotAllowed failure.
func IsMethodNotAllowed(err error) bool { return errors.Is(err, ErrMethodNotAllowed) }
