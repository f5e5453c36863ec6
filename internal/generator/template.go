// Package generator drafts candidate posts from campaign data.
package generator

import (
	"context"
	"fmt"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

const (
	DefaultCharityName    = "Ronald McDonald House Charities"
	DefaultCurrencySymbol = "£"
)

// Template fills fixed post templates with activity and fundraising figures.
type Template struct {
	charity  string
	currency string
}

var _ ports.CandidateGenerator = (*Template)(nil)

// NewTemplate builds a generator; empty arguments fall back to the defaults.
func NewTemplate(charity, currency string) *Template {
	if charity == "" {
		charity = DefaultCharityName
	}
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return &Template{charity: charity, currency: currency}
}

// Generate always returns the same three candidates, c1..c3, for the same inputs.
func (t *Template) Generate(_ context.Context, req domain.PostRequest, activity domain.ActivitySummary, fundraising domain.FundraisingSummary) ([]domain.PostCandidate, error) {
	base := fmt.Sprintf("We’ve just passed %s%.2f for %s, after a %.1f km run along %s.",
		t.currency, fundraising.TotalRaised, t.charity, activity.DistanceKm, activity.RouteName)

	return []domain.PostCandidate{
		{
			CandidateID: "c1",
			Platform:    req.TargetPlatform,
			Text: fmt.Sprintf("%s Thank you to all %d recent donors – your support keeps families close to their children in hospital. %s",
				base, len(fundraising.RecentDonations), req.CallToActionHint),
			Rationale: "Balanced gratitude, mentions impact for RMHC families.",
			RiskFlags: []string{},
		},
		{
			CandidateID: "c2",
			Platform:    req.TargetPlatform,
			Text: fmt.Sprintf("%s We’ve smashed our initial %s%.0f goal, but every extra pound helps another family stay near the care they need.",
				base, t.currency, fundraising.TargetAmount),
			Rationale: "Focuses on milestone and continued need without pressure.",
			RiskFlags: []string{},
		},
		{
			CandidateID: "c3",
			Platform:    req.TargetPlatform,
			Text:        base + " If you can, please consider donating or sharing this campaign today so RMHC can support even more families.",
			Rationale:   "Gentle call-to-action with clear purpose.",
			RiskFlags:   []string{},
		},
	}, nil
}
