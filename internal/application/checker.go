package application

import (
	"context"

	"github.com/openkraft/prodcheck/internal/domain"
)

// Checker validates one section. Checkers are total: connectivity problems
// and bad input become FAIL or WARNING results, never errors.
type Checker interface {
	Check(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult

func (f CheckerFunc) Check(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	return f(ctx, cfg)
}
