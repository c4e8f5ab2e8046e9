package request_models

// DefaultAvailableTimeHours is assumed when a request does not constrain the
// visit window.
const DefaultAvailableTimeHours = 4.0

// UserContext is the per-request ranking context: where the user is, how much
// they can spend and how much time they have.
type UserContext struct {
	UserLat            *float64 `json:"user_lat,omitempty"`
	UserLon            *float64 `json:"user_lon,omitempty"`
	BudgetLevel        int      `json:"budget_level,omitempty" binding:"omitempty,min=1,max=3"`
	AvailableTimeHours float64  `json:"available_time_hours,omitempty" binding:"omitempty,min=0"`
}

// BudgetLevelFromTotal buckets a trip's total budget in rupees into the three
// cost tiers used by the catalog.
func BudgetLevelFromTotal(total float64) int {
	switch {
	case total < 20000:
		return 1
	case total > 30000:
		return 3
	default:
		return 2
	}
}

// RankRequest is the body of the recommendation and decision-trace endpoints.
type RankRequest struct {
	Destination string      `json:"destination" binding:"required"`
	Preferences []string    `json:"preferences"`
	TotalBudget float64     `json:"total_budget,omitempty" binding:"omitempty,min=0"`
	UserContext UserContext `json:"user_context"`
}

// Context resolves the effective ranking context: explicit user coordinates
// win, then the destination's own coordinates, then no location at all.
// A total budget fills in the budget level when the level itself is unset.
func (r RankRequest) Context(destLat, destLon *float64) UserContext {
	ctx := r.UserContext

	if ctx.UserLat == nil || ctx.UserLon == nil {
		ctx.UserLat = destLat
		ctx.UserLon = destLon
	}
	if ctx.BudgetLevel == 0 && r.TotalBudget > 0 {
		ctx.BudgetLevel = BudgetLevelFromTotal(r.TotalBudget)
	}
	if ctx.AvailableTimeHours <= 0 {
		ctx.AvailableTimeHours = DefaultAvailableTimeHours
	}
	return ctx
}
