package main

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	dom "github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/validation"
)

func TestSampleIssues_OrderedWithinWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	spread := 10 * time.Hour
	rows := sampleIssues(rand.New(rand.NewSource(1)), 10, 0.5, spread, now)
	if len(rows) != 10 {
		t.Fatalf("len = %d, want 10", len(rows))
	}
	for i, row := range rows {
		if row.CreatedAt <= now.Add(-spread).Unix() || row.CreatedAt > now.Unix() {
			t.Errorf("row %d created_at %d outside window", i, row.CreatedAt)
		}
		if i > 0 && row.CreatedAt <= rows[i-1].CreatedAt {
			t.Errorf("row %d not after row %d", i, i-1)
		}
		if strings.TrimSpace(row.Title) == "" || len(row.Title) > validation.MaxTitleLen {
			t.Errorf("row %d has invalid title %q", i, row.Title)
		}
	}
}

func TestSampleIssues_ClosedRatioExtremes(t *testing.T) {
	now := time.Now()
	for _, row := range sampleIssues(rand.New(rand.NewSource(2)), 20, 0, time.Hour, now) {
		if row.Status != dom.StatusOpen {
			t.Fatalf("ratio 0 produced %s", dom.FormatStatus(row.Status))
		}
	}
	for _, row := range sampleIssues(rand.New(rand.NewSource(3)), 20, 1, time.Hour, now) {
		if row.Status != dom.StatusClosed {
			t.Fatalf("ratio 1 produced %s", dom.FormatStatus(row.Status))
		}
	}
}
