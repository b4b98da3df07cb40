package search

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIndex keeps one MongoDB collection per index name. Every collection gets a
// wildcard text index the first time it is used.
type MongoIndex struct {
	db *mongo.Database

	mu      sync.Mutex
	ensured map[string]bool
}

func NewMongoIndex(db *mongo.Database) *MongoIndex {
	return &MongoIndex{db: db, ensured: make(map[string]bool)}
}

func (m *MongoIndex) collection(ctx context.Context, index string) (*mongo.Collection, error) {
	coll := m.db.Collection(index)

	m.mu.Lock()
	ensured := m.ensured[index]
	m.mu.Unlock()
	if ensured {
		return coll, nil
	}

	// creating the same index twice is a no-op, so racing callers are fine
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "$**", Value: "text"}},
		Options: options.Index().SetName("text_all"),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "mongoIndex: create text index on %s", index)
	}

	m.mu.Lock()
	m.ensured[index] = true
	m.mu.Unlock()
	return coll, nil
}

func (m *MongoIndex) Add(ctx context.Context, index string, id uint, fields map[string]interface{}) error {
	coll, err := m.collection(ctx, index)
	if err != nil {
		return err
	}

	doc := bson.M{"_id": int64(id)}
	for k, v := range fields {
		doc[k] = v
	}
	_, err = coll.ReplaceOne(ctx, bson.M{"_id": int64(id)}, doc, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "mongoIndex.Add")
}

func (m *MongoIndex) Remove(ctx context.Context, index string, id uint) error {
	_, err := m.db.Collection(index).DeleteOne(ctx, bson.M{"_id": int64(id)})
	return errors.Wrap(err, "mongoIndex.Remove")
}

func (m *MongoIndex) Query(ctx context.Context, index, text string, page, perPage int) ([]uint, int64, error) {
	skip, ok := pageOffset(page, perPage)
	if !ok {
		return nil, 0, nil
	}
	coll, err := m.collection(ctx, index)
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{"$text": bson.M{"$search": text}}
	score := bson.M{"$meta": "textScore"}
	findOptions := options.Find().
		SetProjection(bson.M{"_id": 1, "score": score}).
		SetSort(bson.D{{Key: "score", Value: score}, {Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(perPage))

	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "mongoIndex.Query")
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID int64 `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, errors.Wrap(err, "mongoIndex.Query: decode")
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "mongoIndex.Query: count")
	}

	ids := make([]uint, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, uint(d.ID))
	}
	return ids, total, nil
}
