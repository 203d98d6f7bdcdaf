package mysql

// -----------------------------------------------------------------------------
// WRITES
// -----------------------------------------------------------------------------

// INSERT IGNORE keeps the first row for a name; the id is read back afterwards.
const insertCitySQL = `INSERT IGNORE INTO city (name) VALUES (?)`
const selectCityIDSQL = `SELECT id FROM city WHERE name = ?`

const insertEquipmentSQL = `INSERT IGNORE INTO equipment (name) VALUES (?)`
const selectEquipmentIDSQL = `SELECT id FROM equipment WHERE name = ?`

const insertListingSQL = `
INSERT INTO listing
  (title, price, occurred_at, room_count, bath_count, surface_area, link, city_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const insertListingEquipmentPrefix = "INSERT IGNORE INTO listing_equipment (listing_id, equipment_id) VALUES "

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listCitiesSQL = `SELECT id, name FROM city ORDER BY name`
const listEquipmentSQL = `SELECT id, name FROM equipment ORDER BY name`

// Base of the filtered table; conditions are appended by buildFilterQuery.
const filterListingsBase = `
SELECT l.title, l.price, l.room_count, l.bath_count, l.surface_area, c.name
FROM listing l
JOIN city c ON c.id = l.city_id
WHERE l.price BETWEEN ? AND ?`

const filterByCity = ` AND c.name = ?`

// Any selected equipment is enough (OR across the selection).
const filterByEquipmentPrefix = ` AND l.id IN (
  SELECT le.listing_id
  FROM listing_equipment le
  JOIN equipment e ON e.id = le.equipment_id
  WHERE e.name IN (`

const filterOrder = ` ORDER BY l.id`

const countByCitySQL = `
SELECT c.name, COUNT(l.id)
FROM city c
JOIN listing l ON l.city_id = c.id
GROUP BY c.name
ORDER BY c.name
`

// LEFT JOIN so equipment nobody references still reports zero.
const equipmentDistributionSQL = `
SELECT e.name, COUNT(le.listing_id)
FROM equipment e
LEFT JOIN listing_equipment le ON le.equipment_id = e.id
GROUP BY e.name
ORDER BY e.name
`

// occurred_at is stored as "YYYY-MM-DD hh:mm:ss", so the first seven
// characters are the month and sort chronologically.
const temporalCountsSQL = `
SELECT SUBSTRING(occurred_at, 1, 7) AS month, COUNT(*)
FROM listing
GROUP BY month
ORDER BY month
`

const countListingsSQL = `SELECT COUNT(*) FROM listing`
