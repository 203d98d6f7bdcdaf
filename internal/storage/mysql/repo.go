package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/domain"
)

const store = "mysql"

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) EnsureCity(ctx context.Context, name string) (int64, error) {
	return r.ensureByName(ctx, "ensure_city", insertCitySQL, selectCityIDSQL, name)
}

func (r *Repo) EnsureEquipment(ctx context.Context, name string) (int64, error) {
	return r.ensureByName(ctx, "ensure_equipment", insertEquipmentSQL, selectEquipmentIDSQL, name)
}

func (r *Repo) ensureByName(ctx context.Context, op, insertSQL, selectSQL, name string) (id int64, err error) {
	defer observe(op, time.Now(), &err)

	if _, err = r.db.ExecContext(ctx, insertSQL, name); err != nil {
		return 0, err
	}
	if err = r.db.QueryRowContext(ctx, selectSQL, name).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// InsertListings writes the listings and their equipment links in one transaction.
func (r *Repo) InsertListings(ctx context.Context, ls []domain.Listing) (err error) {
	if len(ls) == 0 {
		return nil
	}
	defer observe("insert_listings", time.Now(), &err)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertListingSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	values := make([]string, 0, len(ls))
	args := make([]any, 0, len(ls)*2)
	for _, l := range ls {
		res, err := stmt.ExecContext(ctx,
			l.Title,
			l.Price,
			l.OccurredAtText(),
			l.RoomCount,
			l.BathCount,
			l.SurfaceArea,
			l.Link,
			l.CityID,
		)
		if err != nil {
			return fmt.Errorf("insert listing %q: %w", l.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, eqID := range l.EquipmentIDs {
			values = append(values, "(?,?)")
			args = append(args, id, eqID)
		}
	}

	if len(values) > 0 {
		q := insertListingEquipmentPrefix + strings.Join(values, ",")
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert listing equipment: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	observability.ObserveSeeded(len(ls))
	return nil
}

func (r *Repo) ListCities(ctx context.Context) (out []domain.City, err error) {
	defer observe("list_cities", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, listCitiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListEquipment(ctx context.Context) (out []domain.Equipment, err error) {
	defer observe("list_equipment", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, listEquipmentSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.Equipment
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// buildFilterQuery assembles the filtered-table SELECT and its arguments.
func buildFilterQuery(f domain.ListingFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(filterListingsBase)
	args := []any{f.PriceMin, f.PriceMax}

	if f.CityRestricted() {
		sb.WriteString(filterByCity)
		args = append(args, strings.TrimSpace(f.City))
	}
	if names := f.EquipmentNames(); len(names) > 0 {
		sb.WriteString(filterByEquipmentPrefix)
		sb.WriteString(strings.TrimSuffix(strings.Repeat("?,", len(names)), ","))
		sb.WriteString("))")
		for _, n := range names {
			args = append(args, n)
		}
	}
	sb.WriteString(filterOrder)
	return sb.String(), args
}

func (r *Repo) FilterListings(ctx context.Context, f domain.ListingFilter) (out []domain.ListingRow, err error) {
	defer observe("filter_listings", time.Now(), &err)

	q, args := buildFilterQuery(f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var lr domain.ListingRow
		if err := rows.Scan(&lr.Title, &lr.Price, &lr.Rooms, &lr.Bathrooms, &lr.Surface, &lr.City); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

func (r *Repo) CountByCity(ctx context.Context) (out []domain.CityCount, err error) {
	defer observe("count_by_city", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, countByCitySQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.CityCount
		if err := rows.Scan(&c.City, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) EquipmentDistribution(ctx context.Context) (out []domain.EquipmentCount, err error) {
	defer observe("equipment_distribution", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, equipmentDistributionSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.EquipmentCount
		if err := rows.Scan(&e.Equipment, &e.Count); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) TemporalCounts(ctx context.Context) (out []domain.MonthCount, err error) {
	defer observe("temporal_counts", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, temporalCountsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) CountListings(ctx context.Context) (n int, err error) {
	defer observe("count_listings", time.Now(), &err)
	err = r.db.QueryRowContext(ctx, countListingsSQL).Scan(&n)
	return n, err
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveQuery(store, op, time.Since(start), *err)
}
