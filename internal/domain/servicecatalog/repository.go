package servicecatalog

import "context"

// FixedPlanFilter selects the fixed price services a company billing plan
// bills for. A nil ServiceCategory only matches uncategorised services.
type FixedPlanFilter struct {
	CompanyID            string
	CompanyBillingPlanID string
	ServiceCategory      *string
}

type Repository interface {
	Get(ctx context.Context, id string) (*Service, error)
	// ListFixedForPlan returns the fixed price services of the plan behind a
	// company billing plan assignment that belong to the plan's service category
	ListFixedForPlan(ctx context.Context, filter FixedPlanFilter) ([]*PlanService, error)
}
