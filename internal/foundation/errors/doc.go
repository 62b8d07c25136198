// Package errors provides the classified error type used across docsite.
//
// A ClassifiedError carries a category, a severity and a retry strategy
// alongside the message. The HTTP adapter turns the category into a status
// code and a JSON body; the CLI adapter turns it into a process exit code.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryNotFound, "Document not found").
//		Info().
//		WithContext("doc_path", docPath).
//		Build()
package errors
