// Seed tool: inserts a batch of sample issues with mixed statuses and spread
// creation times, then prints how many issues each status holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jess-lam/joby-interview/internal/config"
	"github.com/jess-lam/joby-interview/internal/db"
	dom "github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var subjects = []string{
	"Login button unresponsive",
	"Dashboard loads slowly",
	"Typo on pricing page",
	"Export to CSV drops last row",
	"Password reset email not sent",
	"Dark mode contrast too low",
	"Search ignores accented characters",
	"Session expires too early",
	"Avatar upload fails for PNG",
	"Pagination skips an item",
}

func main() {
	var (
		count       int
		closedRatio float64
		spread      time.Duration
		migrate     bool
	)
	flag.IntVar(&count, "count", 30, "number of issues to insert")
	flag.Float64Var(&closedRatio, "closed-ratio", 0.3, "share of issues inserted as closed (0..1)")
	flag.DurationVar(&spread, "spread", 30*24*time.Hour, "created_at values are spread over this window ending now")
	flag.BoolVar(&migrate, "migrate", true, "apply migrations before seeding")
	flag.Parse()

	if err := run(count, closedRatio, spread, migrate); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(count int, closedRatio float64, spread time.Duration, migrate bool) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if closedRatio < 0 || closedRatio > 1 {
		return fmt.Errorf("closed-ratio must be within [0, 1], got %v", closedRatio)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DB.InMemory() {
		return fmt.Errorf("seeding requires a Postgres DATABASE_URL")
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	if migrate {
		if err := db.Migrate(cfg.DB.URL); err != nil {
			return err
		}
	}
	pool, err := db.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	start := time.Now()
	log.Info("seeding issues", zap.Int("count", count), zap.Float64("closed_ratio", closedRatio))

	// One transaction: either every row lands or none does.
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range sampleIssues(r, count, closedRatio, spread, start) {
			batch.Queue(
				`INSERT INTO issues (title, description, status, created_at, updated_at)
				 VALUES ($1, $2, $3::issue_status, $4, $4)`,
				row.Title, row.Description, dom.FormatStatus(row.Status), row.CreatedAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("insert issues: %w", err)
	}
	log.Info("seed committed", zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))

	rows, err := pool.Query(ctx, `SELECT status::text, COUNT(*) FROM issues GROUP BY status ORDER BY status`)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	fmt.Println("Summary:")
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return fmt.Errorf("summary scan: %w", err)
		}
		fmt.Printf("  %s: %d issues\n", status, n)
	}
	return rows.Err()
}

// sampleIssues builds count rows with created_at values in (now-spread, now],
// oldest first.
func sampleIssues(r *rand.Rand, count int, closedRatio float64, spread time.Duration, now time.Time) []dom.Issue {
	step := spread / time.Duration(count)
	out := make([]dom.Issue, count)
	for i := range out {
		status := dom.StatusOpen
		if r.Float64() < closedRatio {
			status = dom.StatusClosed
		}
		subject := subjects[r.Intn(len(subjects))]
		created := now.Add(-spread + step*time.Duration(i+1)).Unix()
		out[i] = dom.Issue{
			Title:       fmt.Sprintf("%s #%d", subject, i+1),
			Description: fmt.Sprintf("Seeded sample issue %d of %d.", i+1, count),
			Status:      status,
			CreatedAt:   created,
		}
	}
	return out
}
