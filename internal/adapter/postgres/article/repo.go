// Package article implements the article collection store on PostgreSQL.
// Every record lives in one row keyed by (app_id, title); history and
// discussion are JSONB arrays. Change notifications come from a row trigger
// that NOTIFYs <table>_changed with the app id as payload.
package article

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	postgres "github.com/binia1/hyobinwiki/internal/adapter/postgres"
	"github.com/binia1/hyobinwiki/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var columns = []string{"title", "content", "history", "discuss", "last_updated"}

// changeListener delivers raw notification payloads until ctx ends.
type changeListener interface {
	Listen(ctx context.Context, onReady func(), fn func(payload string)) error
}

// Config scopes a Repo to one collection of one application.
type Config struct {
	Table    string
	AppID    string
	Debounce time.Duration
}

// Repo provides article persistence and the live collection feed.
type Repo struct {
	db       postgres.Querier
	listener changeListener
	cfg      Config
	log      *slog.Logger
}

// New creates a new article repository.
func New(db postgres.Querier, listener changeListener, cfg Config, log *slog.Logger) *Repo {
	return &Repo{
		db:       db,
		listener: listener,
		cfg:      cfg,
		log:      log.With("repo", "article", "app_id", cfg.AppID),
	}
}

// NotifyChannel returns the channel the table trigger notifies on.
func NotifyChannel(table string) string {
	return table + "_changed"
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Snapshot returns every article of the collection keyed by title.
func (r *Repo) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	query, args, err := psql.Select(columns...).
		From(r.cfg.Table).
		Where(squirrel.Eq{"app_id": r.cfg.AppID}).
		OrderBy("title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	snap := make(domain.Snapshot)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		snap[a.Title] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	return snap, nil
}

// Get returns one article. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Get(ctx context.Context, title string) (domain.Article, error) {
	query, args, err := psql.Select(columns...).
		From(r.cfg.Table).
		Where(squirrel.Eq{"app_id": r.cfg.AppID, "title": title}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build get query: %w", err)
	}

	a, err := scanArticle(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Article{}, postgres.MapError(err, "article", title)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert merge-writes the patched fields, creating the record if missing.
// Columns absent from the patch keep their stored values (or table
// defaults for a new record).
func (r *Repo) Upsert(ctx context.Context, title string, patch domain.ArticlePatch) error {
	cols, vals, err := patchColumns(patch)
	if err != nil {
		return err
	}

	suffix := "ON CONFLICT (app_id, title) DO NOTHING"
	if len(cols) > 0 {
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = EXCLUDED." + c
		}
		suffix = "ON CONFLICT (app_id, title) DO UPDATE SET " + strings.Join(sets, ", ")
	}

	query, args, err := psql.Insert(r.cfg.Table).
		Columns(append([]string{"app_id", "title"}, cols...)...).
		Values(append([]any{r.cfg.AppID, title}, vals...)...).
		Suffix(suffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "article", title)
	}

	r.log.DebugContext(ctx, "article upserted", slog.String("title", title), slog.Any("columns", cols))
	return nil
}

// Update writes the patched fields of an existing record.
// Returns domain.ErrNotFound if the record does not exist.
func (r *Repo) Update(ctx context.Context, title string, patch domain.ArticlePatch) error {
	cols, vals, err := patchColumns(patch)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("update article %q: %w: empty patch", title, domain.ErrValidation)
	}

	b := psql.Update(r.cfg.Table).
		Where(squirrel.Eq{"app_id": r.cfg.AppID, "title": title})
	for i, c := range cols {
		b = b.Set(c, vals[i])
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "article", title)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "article", title)
	}

	r.log.DebugContext(ctx, "article updated", slog.String("title", title), slog.Any("columns", cols))
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func patchColumns(p domain.ArticlePatch) ([]string, []any, error) {
	var (
		cols []string
		vals []any
	)

	if p.Content != nil {
		cols = append(cols, "content")
		vals = append(vals, *p.Content)
	}
	if p.SetHistory {
		history := p.History
		if history == nil {
			history = []domain.Revision{}
		}
		raw, err := json.Marshal(history)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal history: %w", err)
		}
		cols = append(cols, "history")
		vals = append(vals, string(raw))
	}
	if p.SetDiscuss {
		discuss := p.Discuss
		if discuss == nil {
			discuss = []domain.Discussion{}
		}
		raw, err := json.Marshal(discuss)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal discuss: %w", err)
		}
		cols = append(cols, "discuss")
		vals = append(vals, string(raw))
	}
	if p.LastUpdated != nil {
		cols = append(cols, "last_updated")
		vals = append(vals, *p.LastUpdated)
	}

	return cols, vals, nil
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var (
		a           domain.Article
		history     []byte
		discuss     []byte
		lastUpdated pgtype.Timestamptz
	)

	if err := row.Scan(&a.Title, &a.Content, &history, &discuss, &lastUpdated); err != nil {
		return domain.Article{}, err
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.History); err != nil {
			return domain.Article{}, fmt.Errorf("decode history of %q: %w", a.Title, err)
		}
	}
	if len(discuss) > 0 {
		if err := json.Unmarshal(discuss, &a.Discuss); err != nil {
			return domain.Article{}, fmt.Errorf("decode discuss of %q: %w", a.Title, err)
		}
	}
	if lastUpdated.Valid {
		t := lastUpdated.Time
		a.LastUpdated = &t
	}

	return a, nil
}
