package gormstore

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/domain"
)

// Repo implements domain.ListingRepository on top of gorm.
type Repo struct {
	db    *gorm.DB
	store string
}

func New(db *gorm.DB) *Repo {
	return &Repo{db: db, store: db.Dialector.Name()}
}

func (r *Repo) observe(op string, start time.Time, err *error) {
	observability.ObserveQuery(r.store, op, time.Since(start), *err)
}

func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repo) EnsureCity(ctx context.Context, name string) (id int64, err error) {
	defer r.observe("ensure_city", time.Now(), &err)
	c := City{}
	err = r.db.WithContext(ctx).Where(City{Name: name}).FirstOrCreate(&c).Error
	return c.ID, err
}

func (r *Repo) EnsureEquipment(ctx context.Context, name string) (id int64, err error) {
	defer r.observe("ensure_equipment", time.Now(), &err)
	e := Equipment{}
	err = r.db.WithContext(ctx).Where(Equipment{Name: name}).FirstOrCreate(&e).Error
	return e.ID, err
}

// InsertListings writes the listings and their equipment links in one transaction.
func (r *Repo) InsertListings(ctx context.Context, ls []domain.Listing) (err error) {
	if len(ls) == 0 {
		return nil
	}
	defer r.observe("insert_listings", time.Now(), &err)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := make([]Listing, len(ls))
		for i, l := range ls {
			rows[i] = Listing{
				Title:       l.Title,
				Price:       l.Price,
				OccurredAt:  l.OccurredAtText(),
				RoomCount:   l.RoomCount,
				BathCount:   l.BathCount,
				SurfaceArea: l.SurfaceArea,
				Link:        l.Link,
				CityID:      l.CityID,
			}
		}
		if err := tx.Omit("City").Create(&rows).Error; err != nil {
			return err
		}

		var links []ListingEquipment
		for i, l := range ls {
			for _, eqID := range l.EquipmentIDs {
				links = append(links, ListingEquipment{ListingID: rows[i].ID, EquipmentID: eqID})
			}
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Omit("Listing", "Equipment").Create(&links).Error
	})
	if err == nil {
		observability.ObserveSeeded(len(ls))
	}
	return err
}

func (r *Repo) ListCities(ctx context.Context) (out []domain.City, err error) {
	defer r.observe("list_cities", time.Now(), &err)
	err = r.db.WithContext(ctx).Model(&City{}).Select("id, name").Order("name").Scan(&out).Error
	return out, err
}

func (r *Repo) ListEquipment(ctx context.Context) (out []domain.Equipment, err error) {
	defer r.observe("list_equipment", time.Now(), &err)
	err = r.db.WithContext(ctx).Model(&Equipment{}).Select("id, name").Order("name").Scan(&out).Error
	return out, err
}

func (r *Repo) FilterListings(ctx context.Context, f domain.ListingFilter) (out []domain.ListingRow, err error) {
	defer r.observe("filter_listings", time.Now(), &err)

	db := r.db.WithContext(ctx)
	q := db.Table("listing AS l").
		Select("l.title AS title, l.price AS price, l.room_count AS rooms, l.bath_count AS bathrooms, l.surface_area AS surface, c.name AS city").
		Joins("JOIN city c ON c.id = l.city_id").
		Where("l.price BETWEEN ? AND ?", f.PriceMin, f.PriceMax)

	if f.CityRestricted() {
		q = q.Where("c.name = ?", strings.TrimSpace(f.City))
	}
	if names := f.EquipmentNames(); len(names) > 0 {
		// any selected equipment is enough
		tagged := db.Table("listing_equipment AS le").
			Select("le.listing_id").
			Joins("JOIN equipment e ON e.id = le.equipment_id").
			Where("e.name IN ?", names)
		q = q.Where("l.id IN (?)", tagged)
	}

	err = q.Order("l.id").Scan(&out).Error
	return out, err
}

func (r *Repo) CountByCity(ctx context.Context) (out []domain.CityCount, err error) {
	defer r.observe("count_by_city", time.Now(), &err)
	err = r.db.WithContext(ctx).Table("city AS c").
		Select("c.name AS city, COUNT(l.id) AS count").
		Joins("JOIN listing l ON l.city_id = c.id").
		Group("c.name").
		Order("c.name").
		Scan(&out).Error
	return out, err
}

func (r *Repo) EquipmentDistribution(ctx context.Context) (out []domain.EquipmentCount, err error) {
	defer r.observe("equipment_distribution", time.Now(), &err)
	err = r.db.WithContext(ctx).Table("equipment AS e").
		Select("e.name AS equipment, COUNT(le.listing_id) AS count").
		Joins("LEFT JOIN listing_equipment le ON le.equipment_id = e.id").
		Group("e.name").
		Order("e.name").
		Scan(&out).Error
	return out, err
}

// TemporalCounts groups on the YYYY-MM prefix of the stored timestamp text.
func (r *Repo) TemporalCounts(ctx context.Context) (out []domain.MonthCount, err error) {
	defer r.observe("temporal_counts", time.Now(), &err)
	err = r.db.WithContext(ctx).Table("listing").
		Select("SUBSTR(occurred_at, 1, 7) AS month, COUNT(*) AS count").
		Group("SUBSTR(occurred_at, 1, 7)").
		Order("month").
		Scan(&out).Error
	return out, err
}

func (r *Repo) CountListings(ctx context.Context) (n int, err error) {
	defer r.observe("count_listings", time.Now(), &err)
	var c int64
	err = r.db.WithContext(ctx).Model(&Listing{}).Count(&c).Error
	return int(c), err
}
