package domain

import "time"

// Statistics - агрегаты по загруженной базе вершин
type Statistics struct {
	TotalSummits   int                `json:"total_summits"`
	PerAssociation map[string]int     `json:"per_association"`
	TopAssociation []AssociationCount `json:"top_associations"`
	SchemaVersion  int                `json:"schema_version"`
	BuiltAt        *time.Time         `json:"built_at,omitempty"`
	LoadedAt       time.Time          `json:"loaded_at"`
}

// AssociationCount - число вершин в одной ассоциации
type AssociationCount struct {
	Association string `json:"association" db:"association"`
	Count       int    `json:"count" db:"count"`
}
