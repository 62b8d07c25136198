package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if !HasSeverity(err, SeverityFatal) {
			t.Error("expected error to have fatal severity")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		base := NotFoundError("Document not found").Build()
		wrapped := fmt.Errorf("resolve: %w", base)

		if GetCategory(wrapped) != CategoryNotFound {
			t.Errorf("expected not_found category through wrap, got %s", GetCategory(wrapped))
		}
		if GetSeverity(wrapped) != SeverityInfo {
			t.Errorf("expected info severity through wrap, got %s", GetSeverity(wrapped))
		}
	})
}

func TestClassifiedError_IsIgnoresContext(t *testing.T) {
	sentinel := ValidationError("Invalid path").Build()
	decorated := sentinel.WithContext("doc_path", "../etc/passwd")

	if !errors.Is(decorated, sentinel) {
		t.Error("decorated copy should match its sentinel")
	}
	if _, ok := sentinel.Context().Get("doc_path"); ok {
		t.Error("WithContext must not mutate the receiver")
	}
	if errors.Is(decorated, NotFoundError("Invalid path").Build()) {
		t.Error("errors with different categories must not match")
	}
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := WrapError(originalErr, CategoryFileSystem, "cannot write sitemap").
		Warning().
		Retryable().
		WithContext("path", "/tmp/out/sitemap.xml").
		Build()

	if !errors.Is(err, originalErr) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if !err.CanRetry() {
		t.Error("expected retryable error")
	}
	if err.IsFatal() {
		t.Error("warning must not be fatal")
	}
	want := "[filesystem:warning] cannot write sitemap: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGetCategory_Unclassified(t *testing.T) {
	if got := GetCategory(errors.New("boom")); got != CategoryInternal {
		t.Errorf("GetCategory() = %s, want %s", got, CategoryInternal)
	}
	if got := GetSeverity(errors.New("boom")); got != SeverityError {
		t.Errorf("GetSeverity() = %s, want %s", got, SeverityError)
	}
}
