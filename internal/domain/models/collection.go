// internal/domain/models/collection.go
package models

// CollectionMarker is the collection whose creation forces its owning
// database to be materialized.
type CollectionMarker struct {
	Name     string `json:"name"`
	Database string `json:"database"`
}
