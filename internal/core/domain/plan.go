package domain

// Plan is the planner's decision for a single user turn.
type Plan struct {
	// NeedFreshSearch is false only when the user asked to answer from
	// already collected material.
	NeedFreshSearch bool `json:"need_fresh_search"`

	// SearchQueries holds at most four web queries.
	SearchQueries []string `json:"search_queries"`

	// Followups are suggested next questions for the user.
	Followups []string `json:"followups"`
}
