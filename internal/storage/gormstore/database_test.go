package gormstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"/var/lib/estate/estate.db":          "/var/lib/estate/estate.db?_foreign_keys=on",
		"file:estate.db?cache=shared":        "file:estate.db?cache=shared&_foreign_keys=on",
		"file::memory:?_foreign_keys=on":     "file::memory:?_foreign_keys=on",
		"estate.db?_fk=1":                    "estate.db?_fk=1",
		"file:estate.db?_foreign_keys=false": "file:estate.db?_foreign_keys=false",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
}

func TestOpen_SQLiteEnforcesForeignKeysOnPlainPath(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "estate.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var on int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&on).Error)
	assert.Equal(t, 1, on)

	orphan := Listing{Title: "orphan", Price: 1, OccurredAt: "2026-01-01 00:00:00", RoomCount: 1, BathCount: 1,
		SurfaceArea: 50, Link: "https://listings.example.com/orphan", CityID: 9999}
	assert.Error(t, db.Omit("City").Create(&orphan).Error)

	assert.Error(t, db.Omit("Listing", "Equipment").Create(&ListingEquipment{ListingID: 1, EquipmentID: 4242}).Error)
}

func TestOpen_SQLiteRejectsDisabledForeignKeys(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, "file::memory:?_foreign_keys=off", 0)
	assert.Error(t, err)
}
