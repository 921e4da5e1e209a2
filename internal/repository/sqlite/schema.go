package sqlite

// SchemaVersion - версия раскладки блоба; читатель отвергает неизвестные версии
const SchemaVersion = 1

const (
	TableSummits = "summits"
	TableIndex   = "summits_rtree"
	TableMeta    = "meta"
)

const (
	MetaSchemaVersion = "schema_version"
	MetaRowCount      = "row_count"
	MetaBuiltAt       = "built_at"
	MetaSourceName    = "source_name"
)

// RequiredSummitColumns - колонки, без которых блоб считается повреждённым
var RequiredSummitColumns = []string{
	"id", "ref", "name", "lat", "lon", "altitude", "points",
	"activations", "bonus", "association", "region", "valid_from", "valid_to",
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS summits (
		id          INTEGER PRIMARY KEY,
		ref         TEXT    NOT NULL UNIQUE,
		name        TEXT    NOT NULL,
		lat         REAL    NOT NULL CHECK (lat BETWEEN -90 AND 90),
		lon         REAL    NOT NULL CHECK (lon BETWEEN -180 AND 180),
		altitude    INTEGER NOT NULL,
		points      INTEGER NOT NULL,
		activations INTEGER NOT NULL DEFAULT 0,
		bonus       INTEGER,
		association TEXT    NOT NULL,
		region      TEXT    NOT NULL,
		valid_from  TEXT,
		valid_to    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_summits_association ON summits (association, region)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS summits_rtree USING rtree (
		id, min_lat, max_lat, min_lon, max_lon
	)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

const insertSummitSQL = `
	INSERT INTO summits (
		id, ref, name, lat, lon, altitude, points, activations,
		bonus, association, region, valid_from, valid_to
	) VALUES (
		:id, :ref, :name, :lat, :lon, :altitude, :points, :activations,
		:bonus, :association, :region, :valid_from, :valid_to
	)`

const insertIndexSQL = `
	INSERT INTO summits_rtree (id, min_lat, max_lat, min_lon, max_lon)
	VALUES (:id, :min_lat, :max_lat, :min_lon, :max_lon)`

const upsertMetaSQL = `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`
