package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/lib/pq"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

// uniqueViolation is the postgres SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// StartRepositorySpan creates a new span for a repository operation
// Returns nil if Sentry is not available in the context
func StartRepositorySpan(ctx context.Context, repository, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "repository." + repository + "." + operation
	span := sentry.StartSpan(ctx, name)
	span.Description = name
	span.Op = "db.postgres"
	span.SetData("repository", repository)
	span.SetData("operation", operation)
	span.SetData("tenant_id", types.GetTenantID(ctx))
	for k, v := range params {
		span.SetData(k, v)
	}

	return span
}

// FinishSpan safely finishes a span, handling nil spans
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

// SetSpanError marks a span as failed and adds error information
func SetSpanError(span *sentry.Span, err error) {
	if span == nil || err == nil {
		return
	}

	span.Status = sentry.SpanStatusInternalError
	span.SetData("error", err.Error())
}

// SetSpanSuccess marks a span as successful
func SetSpanSuccess(span *sentry.Span) {
	if span != nil {
		span.Status = sentry.SpanStatusOK
	}
}

// tenantFromContext returns the tenant every query is scoped to
func tenantFromContext(ctx context.Context) (string, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return "", err
	}
	return types.GetTenantID(ctx), nil
}

// wrapGetError maps sql.ErrNoRows to ErrNotFound and anything else to ErrDatabase
func wrapGetError(err error, entity string, details map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s was not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Failed to get %s", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}

// wrapWriteError maps unique violations to ErrAlreadyExists and anything else to ErrDatabase
func wrapWriteError(err error, entity string, details map[string]any) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ierr.WithError(err).
			WithHintf("A %s with this identifier already exists", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("Failed to write %s", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
