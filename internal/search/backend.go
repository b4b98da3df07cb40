package search

import (
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
)

// Backend names accepted by NewIndex.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// NewIndex returns the index for backend. A mongo backend without a client
// falls back to NopIndex so the application still starts.
func NewIndex(backend string, client *mongo.Client, database string) Index {
	switch backend {
	case BackendMongo:
		if client == nil {
			slog.Warn("search: mongo backend selected but not connected, search disabled")
			return NopIndex{}
		}
		return NewMongoIndex(client.Database(database))
	case BackendNone:
		return NopIndex{}
	case BackendMemory, "":
		return NewMemoryIndex()
	default:
		slog.Warn("search: unknown backend, search disabled", "backend", backend)
		return NopIndex{}
	}
}
