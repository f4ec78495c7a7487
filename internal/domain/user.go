package domain

// Plan enumerates billing plans.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Metered reports whether requests on the plan count against the free quota.
// Any plan other than premium is metered.
func (p Plan) Metered() bool {
	return p != PlanPremium
}

// UsageState is the per-user metering snapshot read at the start of every
// request. FreeUsage is meaningful only for metered plans.
type UsageState struct {
	Plan      Plan
	FreeUsage int
}
