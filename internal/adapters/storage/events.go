package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cylvision/dockwatch/internal/domain/model"
)

// Query filters the event log. Zero-value fields (and the literal
// "all") disable their filter. Time bounds are resolved by the report
// layer; Until is exclusive when UntilExclusive is set (date-only
// bounds), inclusive otherwise.
type Query struct {
	Platform string
	Zone     string

	Since          time.Time
	SinceSet       bool
	Until          time.Time
	UntilSet       bool
	UntilExclusive bool
}

// Append durably adds one crossing event to the log. Appends from
// concurrent platforms interleave in arrival order; no global ordering
// beyond that is promised.
func (s *Store) Append(ctx context.Context, e model.CrossingEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (platform, zone, direction, qty, ts) VALUES (?, ?, ?, ?, ?)`,
		e.Platform, e.Zone, e.Direction, e.Qty, e.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Events returns log entries matching q, ordered by timestamp then
// append order. Direction filtering is left to the caller because it
// requires synonym normalization.
func (s *Store) Events(ctx context.Context, q Query) ([]model.CrossingEvent, error) {
	var (
		where []string
		args  []any
	)
	if q.Platform != "" && q.Platform != "all" {
		where = append(where, "platform = ?")
		args = append(args, q.Platform)
	}
	if q.Zone != "" && q.Zone != "all" {
		where = append(where, "zone = ?")
		args = append(args, q.Zone)
	}
	if q.SinceSet {
		where = append(where, "ts >= ?")
		args = append(args, q.Since.Unix())
	}
	if q.UntilSet {
		if q.UntilExclusive {
			where = append(where, "ts < ?")
		} else {
			where = append(where, "ts <= ?")
		}
		args = append(args, q.Until.Unix())
	}

	query := `SELECT platform, zone, direction, qty, ts FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []model.CrossingEvent
	for rows.Next() {
		var (
			e  model.CrossingEvent
			ts int64
		)
		if err := rows.Scan(&e.Platform, &e.Zone, &e.Direction, &e.Qty, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// CountEvents returns the total size of the log, for stats.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
