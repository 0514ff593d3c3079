package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// verdictRepo implements VerdictRepo backed by the ent SQL driver and the
// global sequence counter.
type verdictRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *verdictRepo) AppendFindItVerdict(ctx context.Context, data FindItVerdictData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var lines any
	if data.SelectedLines != nil {
		b, err := json.Marshal(data.SelectedLines)
		if err != nil {
			return fmt.Errorf("marshal selected lines: %w", err)
		}
		lines = string(b)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableFindItVerdicts).
		Columns("sequence", "timestamp", "challenge_key", "verdict", "selected_lines").
		Values(seqNum, ts, data.ChallengeKey, data.Verdict, lines).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save find it verdict: %w", err)
	}
	return nil
}

func (r *verdictRepo) FindItAttempts(ctx context.Context, key string) (int, error) {
	return r.count(ctx, tableFindItVerdicts, key)
}

func (r *verdictRepo) QueryFindItVerdicts(ctx context.Context, key string) ([]FindItVerdictRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "sequence", "timestamp", "challenge_key", "verdict", "selected_lines").
		From(b.Table(tableFindItVerdicts)).
		Where(entsql.EQ("challenge_key", key)).
		OrderBy("sequence").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query find it verdicts: %w", err)
	}
	defer rows.Close()

	var records []FindItVerdictRecord
	for rows.Next() {
		var (
			rec   FindItVerdictRecord
			lines sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.ChallengeKey, &rec.Verdict, &lines); err != nil {
			return nil, fmt.Errorf("scan find it verdict: %w", err)
		}
		if lines.Valid {
			if err := json.Unmarshal([]byte(lines.String), &rec.SelectedLines); err != nil {
				return nil, fmt.Errorf("decode selected lines: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate find it verdicts: %w", err)
	}
	return records, nil
}

func (r *verdictRepo) MarkFindItSolved(ctx context.Context, key string, at time.Time) (bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSolves).
		Columns("challenge_key", "find_it_solved_at").
		Values(key, at.UTC()).
		OnConflict(entsql.ConflictColumns("challenge_key"), entsql.DoNothing()).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("save challenge solve: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("challenge solve rows: %w", err)
	}
	return n > 0, nil
}

func (r *verdictRepo) FindItSolved(ctx context.Context, key string) (bool, error) {
	n, err := r.count(ctx, tableSolves, key)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *verdictRepo) FindItSummaries(ctx context.Context) ([]FindItSummary, error) {
	b := entsql.Dialect(dialect.SQLite)
	byKey := make(map[string]*FindItSummary)

	query, args := b.Select("challenge_key", entsql.Count("*")).
		From(b.Table(tableFindItVerdicts)).
		GroupBy("challenge_key").
		Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	for rows.Next() {
		var s FindItSummary
		if err := rows.Scan(&s.ChallengeKey, &s.Attempts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan attempts: %w", err)
		}
		byKey[s.ChallengeKey] = &s
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	rows.Close()

	query, args = b.Select("challenge_key", "find_it_solved_at").
		From(b.Table(tableSolves)).
		Query()
	rows = &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query solves: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			at  time.Time
		)
		if err := rows.Scan(&key, &at); err != nil {
			return nil, fmt.Errorf("scan solve: %w", err)
		}
		s, ok := byKey[key]
		if !ok {
			s = &FindItSummary{ChallengeKey: key}
			byKey[key] = s
		}
		s.Solved = true
		s.SolvedAt = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solves: %w", err)
	}

	summaries := make([]FindItSummary, 0, len(byKey))
	for _, s := range byKey {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ChallengeKey < summaries[j].ChallengeKey
	})
	return summaries, nil
}

func (r *verdictRepo) ResetFindIt(ctx context.Context, key string) error {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}

	b := entsql.Dialect(dialect.SQLite)
	for _, table := range []string{tableFindItVerdicts, tableSolves} {
		del := b.Delete(table)
		if key != "" {
			del = del.Where(entsql.EQ("challenge_key", key))
		}
		query, args := del.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// count returns the number of rows in table for a challenge key.
func (r *verdictRepo) count(ctx context.Context, table, key string) (int, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(table)).
		Where(entsql.EQ("challenge_key", key)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("scan %s count: %w", table, err)
	}
	return n, nil
}
