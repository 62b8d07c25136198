// Package handlers contains the HTTP handlers of the docsite server.
//
// This package provides handlers for:
//   - The raw document endpoint that serves markdown sources by slug and locale
//   - Health and readiness endpoints (monitoring)
//   - Shared response helper functions
//
// All handlers follow a consistent pattern for error handling and response formatting,
// using the foundation/errors package for structured error handling and the
// server/responses package for standardized HTTP responses.
package handlers
