package models

// Entity is implemented by every persisted model in this package and nothing else.
// The transaction pipeline records Entities in its changeset; SearchDocument tells
// the search mirror whether, and how, an entity is mirrored into the text index.
type Entity interface {
	SearchDocument() (SearchDocument, bool)
	entity()
}

// SearchDocument is the subset of an entity that is pushed to the text index.
type SearchDocument struct {
	Index  string
	ID     uint
	Fields map[string]interface{}
}
