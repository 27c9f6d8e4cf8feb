package types

import (
	"context"

	ierr "github.com/psaworks/psa/internal/errors"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxTenantID      ContextKey = "ctx_tenant_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxBillingRunID  ContextKey = "ctx_billing_run_id"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// Default values
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(CtxTenantID).(string); ok {
		return tenantID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetBillingRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(CtxBillingRunID).(string); ok {
		return runID
	}
	return ""
}

// SetTenantID sets the tenant ID in the context
func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetBillingRunID tags the context with the reference of the billing run it belongs to
func SetBillingRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, CtxBillingRunID, runID)
}

// ValidateTenantContext fails when no tenant is bound to the context.
// Every tenant scoped read and write goes through it.
func ValidateTenantContext(ctx context.Context) error {
	if ctx == nil {
		return ierr.NewError("context is nil").
			Mark(ierr.ErrSystem)
	}

	if GetTenantID(ctx) == "" {
		return ierr.NewError("no tenant context found in context").
			WithHint("A tenant must be selected for this operation").
			Mark(ierr.ErrValidation)
	}

	return nil
}
