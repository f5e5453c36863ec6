package domain

// ActivitySummary describes one run or training session.
type ActivitySummary struct {
	Date         string  `json:"date"`
	DistanceKm   float64 `json:"distance_km"`
	DurationMin  int     `json:"duration_min"`
	PaceMinPerKm float64 `json:"pace_min_per_km"`
	EventName    string  `json:"event_name"`
	RouteName    string  `json:"route_name"`
}

// DonationDetail is a single donation entry.
type DonationDetail struct {
	DonorName string  `json:"donor_name"`
	Amount    float64 `json:"amount_usd"`
	Message   string  `json:"message,omitempty"`
}

// FundraisingSummary aggregates campaign progress.
type FundraisingSummary struct {
	TotalRaised     float64          `json:"total_raised_usd"`
	TargetAmount    float64          `json:"target_amount_usd"`
	PercentToGoal   float64          `json:"percent_to_goal"`
	RecentDonations []DonationDetail `json:"recent_donations"`
}
