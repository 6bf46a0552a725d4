package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownSection = errors.New("content: unknown section")
	ErrUnauthorized   = errors.New("content: unauthorized")
	// ErrReadOnly is wrapped by tiers whose backing storage refuses writes
	// for deployment reasons (read-only filesystem, no write permission).
	ErrReadOnly = errors.New("content: storage is read-only")
	// ErrTierUnavailable is reported for a tier that is not configured.
	ErrTierUnavailable = errors.New("content: tier not configured")
	ErrNoEvaluator     = errors.New("content: evaluator not configured")
)

// ValidationError describes the first required-field or rule violation found
// in a document.
type ValidationError struct {
	Section Section
	Field   string
	Reason  string
	Err     error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("content: invalid ")
	if e.Section != "" {
		b.WriteString(string(e.Section))
		b.WriteString(" ")
	}
	b.WriteString("data")
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(" ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func invalid(section Section, field, reason string) *ValidationError {
	return &ValidationError{Section: section, Field: field, Reason: reason}
}

// TierFailure records why one tier refused a write.
type TierFailure struct {
	Tier string
	Err  error
}

// StorageError is returned when every attempted tier failed a write.
// NeedsConfiguration marks failures that no retry can fix until an operator
// changes the deployment (no store configured and no writable filesystem).
type StorageError struct {
	Section            Section
	Failures           []TierFailure
	NeedsConfiguration bool
}

func (e *StorageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", failure.Tier, failure.Err))
	}
	prefix := "content: storage unavailable"
	if e.NeedsConfiguration {
		prefix = "content: storage needs configuration"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s for section %q", prefix, e.Section)
	}
	return fmt.Sprintf("%s for section %q (%s)", prefix, e.Section, strings.Join(parts, "; "))
}

// Unwrap exposes every tier error to errors.Is / errors.As.
func (e *StorageError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Failures))
	for _, failure := range e.Failures {
		if failure.Err != nil {
			errs = append(errs, failure.Err)
		}
	}
	return errs
}

// IsNeedsConfiguration reports whether err carries the needs-configuration
// condition.
func IsNeedsConfiguration(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.NeedsConfiguration
}

// UpstreamError wraps a failure reported by a third-party dependency (media
// host, form relay, deployment API). Message is the upstream's own text and
// is considered safe to show to users.
type UpstreamError struct {
	Service string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("content: upstream %s status=%d: %s", e.Service, e.Status, msg)
	}
	return fmt.Sprintf("content: upstream %s: %s", e.Service, msg)
}

func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures rule evaluator metadata alongside the originating
// error.
type EvaluationError struct {
	Engine  string
	Expr    string
	Section string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("content: %s evaluator %s section=%s: %v", e.Engine, describeExpression(e.Expr), e.Section, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "content:") {
		return err
	}
	return fmt.Errorf("content: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, section string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Section == "" {
			evalErr.Section = section
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Section: section,
		Err:     err,
	}
}
