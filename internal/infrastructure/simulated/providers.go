// Package simulated provides deterministic stand-ins for the campaign data sources
// and the publishing channel.
package simulated

import (
	"context"
	"math"
	"time"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// Provider returns fixed activity and fundraising snapshots.
type Provider struct {
	now func() time.Time
}

var (
	_ ports.ActivitySource    = (*Provider)(nil)
	_ ports.FundraisingSource = (*Provider)(nil)
)

// NewProvider builds a provider; now defaults to time.Now.
func NewProvider(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{now: now}
}

// ActivitySummary returns today's 10K run.
func (p *Provider) ActivitySummary(context.Context) (domain.ActivitySummary, error) {
	return domain.ActivitySummary{
		Date:         p.now().UTC().Format(time.DateOnly),
		DistanceKm:   10.0,
		DurationMin:  55,
		PaceMinPerKm: 5.5,
		EventName:    "Southend Seafront 10K",
		RouteName:    "Black Friday Coastal Loop",
	}, nil
}

// FundraisingSummary returns the campaign total against a £500 target.
func (p *Provider) FundraisingSummary(context.Context) (domain.FundraisingSummary, error) {
	total, target := 507.15, 500.0
	return domain.FundraisingSummary{
		TotalRaised:   total,
		TargetAmount:  target,
		PercentToGoal: PercentToGoal(total, target),
		RecentDonations: []domain.DonationDetail{
			{DonorName: "Anonymous", Amount: 25.0, Message: "Keep going!"},
			{DonorName: "Local Guest", Amount: 15.0, Message: "For RMHC families."},
		},
	}, nil
}

// SeedMemory is the memory a fresh campaign store starts from.
func SeedMemory(now time.Time) domain.FullMemory {
	return domain.FullMemory{
		Statistical: domain.StatisticalMemory{
			TotalLifetimeRaised: 507.15,
			TotalLifetimeKmRun:  42.2,
			LastUpdateDate:      now.UTC().Format(time.DateOnly),
		},
		Episodic: domain.EpisodicMemory{
			PastSuccessfulPosts: []string{
				"Huge thank you to everyone who helped us cross the £500 line for RMHC!",
			},
		},
	}
}

// PercentToGoal rounds total/target to one decimal place; a zero target yields 0.
func PercentToGoal(total, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(total/target*1000) / 10
}
