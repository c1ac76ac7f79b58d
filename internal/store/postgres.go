package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jw6ventures/dyncal/internal/calendar"
)

// availabilityRepo implements AvailabilityRepository.
type availabilityRepo struct {
	pool PgxPool
}

func (r *availabilityRepo) ListDates(ctx context.Context, name string, from, to calendar.CalendarDate) ([]calendar.CalendarDate, error) {
	defer observeDB(ctx, "availability.list_dates")()

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM availability_sets WHERE name=$1)`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup availability set %s: %w", name, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `SELECT day FROM available_dates
WHERE set_name=$1 AND day BETWEEN $2 AND $3
ORDER BY day`, name, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("list available dates for %s: %w", name, err)
	}
	days, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (calendar.CalendarDate, error) {
		var day time.Time
		if err := row.Scan(&day); err != nil {
			return calendar.CalendarDate{}, err
		}
		return calendar.DateOf(day), nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan available dates for %s: %w", name, err)
	}
	return days, nil
}

func (r *availabilityRepo) ListSets(ctx context.Context) ([]AvailabilitySetSummary, error) {
	defer observeDB(ctx, "availability.list_sets")()

	rows, err := r.pool.Query(ctx, `SELECT s.name, s.description, s.updated_at, COUNT(d.day)
FROM availability_sets s
LEFT JOIN available_dates d ON d.set_name = s.name
GROUP BY s.name, s.description, s.updated_at
ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("list availability sets: %w", err)
	}
	sets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AvailabilitySetSummary, error) {
		var s AvailabilitySetSummary
		err := row.Scan(&s.Name, &s.Description, &s.UpdatedAt, &s.DayCount)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan availability sets: %w", err)
	}
	return sets, nil
}

func (r *availabilityRepo) ReplaceSet(ctx context.Context, set AvailabilitySet) error {
	defer observeDB(ctx, "availability.replace_set")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", set.Name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsert = `INSERT INTO availability_sets (name, description) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()`
	if _, err := tx.Exec(ctx, upsert, set.Name, set.Description); err != nil {
		return fmt.Errorf("upsert availability set %s: %w", set.Name, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM available_dates WHERE set_name=$1`, set.Name); err != nil {
		return fmt.Errorf("clear availability set %s: %w", set.Name, err)
	}

	if len(set.Dates) > 0 {
		days := make([]time.Time, 0, len(set.Dates))
		for _, d := range set.Dates {
			days = append(days, dateParam(d))
		}
		const insert = `INSERT INTO available_dates (set_name, day)
SELECT $1, UNNEST($2::date[]) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, insert, set.Name, days); err != nil {
			return fmt.Errorf("insert available dates for %s: %w", set.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace %s: %w", set.Name, err)
	}
	return nil
}

func (r *availabilityRepo) DeleteSet(ctx context.Context, name string) error {
	defer observeDB(ctx, "availability.delete_set")()

	tag, err := r.pool.Exec(ctx, `DELETE FROM availability_sets WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("delete availability set %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func dateParam(d calendar.CalendarDate) time.Time {
	return d.StartOfDay(time.UTC)
}
