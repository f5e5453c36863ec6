package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

const memoryTable = "campaign_memory"

// Dialect selects placeholder style for the SQL backend.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

func (d Dialect) placeholders() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// SQLStore persists memory as one row per campaign.
type SQLStore struct {
	db       *sql.DB
	builder  sq.StatementBuilderType
	campaign string
	seed     domain.FullMemory
}

var _ ports.MemoryStore = (*SQLStore)(nil)

// NewSQLStore wires an open database; seed is returned until the first Put.
func NewSQLStore(db *sql.DB, dialect Dialect, campaign string, seed domain.FullMemory) *SQLStore {
	if campaign == "" {
		campaign = "default"
	}
	return &SQLStore{
		db:       db,
		builder:  sq.StatementBuilder.PlaceholderFormat(dialect.placeholders()),
		campaign: campaign,
		seed:     seed.Clone(),
	}
}

// Get loads the campaign row.
func (s *SQLStore) Get(ctx context.Context) (domain.FullMemory, error) {
	query, args, err := s.builder.
		Select("total_lifetime_raised", "total_lifetime_km_run", "last_update_date", "past_posts").
		From(memoryTable).
		Where(sq.Eq{"campaign_id": s.campaign}).
		ToSql()
	if err != nil {
		return domain.FullMemory{}, fmt.Errorf("build select: %w", err)
	}

	var (
		mem   domain.FullMemory
		posts string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&mem.Statistical.TotalLifetimeRaised,
		&mem.Statistical.TotalLifetimeKmRun,
		&mem.Statistical.LastUpdateDate,
		&posts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return s.seed.Clone(), nil
	}
	if err != nil {
		return domain.FullMemory{}, fmt.Errorf("query memory: %w", err)
	}

	if err := json.Unmarshal([]byte(posts), &mem.Episodic.PastSuccessfulPosts); err != nil {
		return domain.FullMemory{}, fmt.Errorf("decode past posts: %w", err)
	}
	if mem.Episodic.PastSuccessfulPosts == nil {
		mem.Episodic.PastSuccessfulPosts = []string{}
	}
	return mem, nil
}

// Put upserts the campaign row.
func (s *SQLStore) Put(ctx context.Context, mem domain.FullMemory) error {
	posts := mem.Episodic.PastSuccessfulPosts
	if posts == nil {
		posts = []string{}
	}
	encoded, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode past posts: %w", err)
	}

	query, args, err := s.builder.
		Insert(memoryTable).
		Columns("campaign_id", "total_lifetime_raised", "total_lifetime_km_run", "last_update_date", "past_posts", "updated_at").
		Values(s.campaign, mem.Statistical.TotalLifetimeRaised, mem.Statistical.TotalLifetimeKmRun,
			mem.Statistical.LastUpdateDate, string(encoded), sq.Expr("CURRENT_TIMESTAMP")).
		Suffix(`ON CONFLICT (campaign_id) DO UPDATE
              SET total_lifetime_raised = EXCLUDED.total_lifetime_raised,
                  total_lifetime_km_run = EXCLUDED.total_lifetime_km_run,
                  last_update_date = EXCLUDED.last_update_date,
                  past_posts = EXCLUDED.past_posts,
                  updated_at = CURRENT_TIMESTAMP`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert memory: %w", err)
	}
	return nil
}
