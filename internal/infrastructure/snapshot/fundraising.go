// Package snapshot reads fundraising progress from a saved campaign page.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/infrastructure/simulated"
	"RunRaiser/internal/ports"
)

var amountExpr = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// FileSource parses a fundraising page snapshot stored on disk.
type FileSource struct {
	path         string
	maxDonations int
	logger       *slog.Logger
}

var _ ports.FundraisingSource = (*FileSource)(nil)

// NewFileSource wires a snapshot path; maxDonations <= 0 keeps every donation.
func NewFileSource(path string, maxDonations int, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, maxDonations: maxDonations, logger: logger}
}

// FundraisingSummary re-reads the snapshot on every call.
func (s *FileSource) FundraisingSummary(ctx context.Context) (domain.FundraisingSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.FundraisingSummary{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return domain.FundraisingSummary{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	summary, err := Parse(f, s.maxDonations)
	if err != nil {
		return domain.FundraisingSummary{}, fmt.Errorf("snapshot %s: %w", s.path, err)
	}
	s.debug("snapshot parsed", "path", s.path, "total", summary.TotalRaised, "donations", len(summary.RecentDonations))
	return summary, nil
}

// Parse extracts totals and recent donations from page HTML.
//
// Expected markup: elements tagged data-metric="raised" and data-metric="target",
// and .donation entries with .donor, .amount and an optional .message.
func Parse(r io.Reader, maxDonations int) (domain.FundraisingSummary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.FundraisingSummary{}, fmt.Errorf("parse document: %w", err)
	}

	raised, err := parseAmount(doc.Find(`[data-metric="raised"]`).First().Text())
	if err != nil {
		return domain.FundraisingSummary{}, fmt.Errorf("raised: %w", err)
	}
	target, err := parseAmount(doc.Find(`[data-metric="target"]`).First().Text())
	if err != nil {
		return domain.FundraisingSummary{}, fmt.Errorf("target: %w", err)
	}

	donations := make([]domain.DonationDetail, 0)
	doc.Find(".donation").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if maxDonations > 0 && len(donations) >= maxDonations {
			return false
		}
		amount, err := parseAmount(sel.Find(".amount").First().Text())
		if err != nil {
			return true
		}
		donor := strings.TrimSpace(sel.Find(".donor").First().Text())
		if donor == "" {
			donor = "Anonymous"
		}
		donations = append(donations, domain.DonationDetail{
			DonorName: donor,
			Amount:    amount,
			Message:   strings.TrimSpace(sel.Find(".message").First().Text()),
		})
		return true
	})

	return domain.FundraisingSummary{
		TotalRaised:     raised,
		TargetAmount:    target,
		PercentToGoal:   simulated.PercentToGoal(raised, target),
		RecentDonations: donations,
	}, nil
}

func parseAmount(text string) (float64, error) {
	match := amountExpr.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no amount in %q", strings.TrimSpace(text))
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", match, err)
	}
	return value, nil
}

func (s *FileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
