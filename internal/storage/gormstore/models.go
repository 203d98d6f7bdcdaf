package gormstore

// Storage models. They mirror the MySQL migrations so every driver ends up
// with the same four tables.

type City struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex"`
}

func (City) TableName() string { return "city" }

type Equipment struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex"`
}

func (Equipment) TableName() string { return "equipment" }

type Listing struct {
	ID          int64   `gorm:"primaryKey"`
	Title       string  `gorm:"size:512;not null"`
	Price       float64 `gorm:"not null;index"`
	OccurredAt  string  `gorm:"size:19;not null;index"`
	RoomCount   int     `gorm:"not null"`
	BathCount   int     `gorm:"not null"`
	SurfaceArea float64 `gorm:"not null"`
	Link        string  `gorm:"size:1024;not null"`
	CityID      int64   `gorm:"not null;index"`
	City        City    `gorm:"foreignKey:CityID"`
}

func (Listing) TableName() string { return "listing" }

// ListingEquipment is the association row; the pair is the primary key.
type ListingEquipment struct {
	ListingID   int64     `gorm:"primaryKey;autoIncrement:false"`
	EquipmentID int64     `gorm:"primaryKey;autoIncrement:false;index"`
	Listing     Listing   `gorm:"foreignKey:ListingID"`
	Equipment   Equipment `gorm:"foreignKey:EquipmentID"`
}

func (ListingEquipment) TableName() string { return "listing_equipment" }

// AllModels lists the tables in dependency order for AutoMigrate.
func AllModels() []any {
	return []any{&City{}, &Equipment{}, &Listing{}, &ListingEquipment{}}
}
