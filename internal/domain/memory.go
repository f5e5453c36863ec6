package domain

// StatisticalMemory keeps lifetime campaign totals.
type StatisticalMemory struct {
	TotalLifetimeRaised float64 `json:"total_lifetime_raised_usd"`
	TotalLifetimeKmRun  float64 `json:"total_lifetime_km_run"`
	LastUpdateDate      string  `json:"last_update_date"`
}

// EpisodicMemory keeps previously published posts.
type EpisodicMemory struct {
	PastSuccessfulPosts []string `json:"past_successful_posts"`
}

// FullMemory groups every memory kind the workflow reads and updates.
type FullMemory struct {
	Statistical StatisticalMemory `json:"statistical"`
	Episodic    EpisodicMemory    `json:"episodic"`
}

// EmptyMemory returns the zero-state memory used before anything was stored.
func EmptyMemory() FullMemory {
	return FullMemory{
		Statistical: StatisticalMemory{LastUpdateDate: "N/A"},
		Episodic:    EpisodicMemory{PastSuccessfulPosts: []string{}},
	}
}

// Clone returns a deep copy so callers never share the episodic slice.
func (m FullMemory) Clone() FullMemory {
	out := m
	out.Episodic.PastSuccessfulPosts = append([]string(nil), m.Episodic.PastSuccessfulPosts...)
	return out
}
