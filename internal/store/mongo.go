package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// insertedField orders documents by creation when a query sets no order. It is
// stripped from returned fields.
const insertedField = "_inserted"

// MongoStore maps each collection onto a MongoDB collection of the same name.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories query by.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]string{
		CollectionTasks:       {"owner_id", "name"},
		CollectionTimeEntries: {"start_time", "owner_id", "task_id"},
		CollectionUsers:       {"email", "external_identity_id"},
	}
	for collection, fields := range indexes {
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, f := range fields {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
		}
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("store: indexes %s: %w", collection, err)
		}
	}
	return nil
}

func mongoOperator(op Operator) string {
	switch op {
	case OpLess:
		return "$lt"
	case OpLessOrEqual:
		return "$lte"
	case OpGreater:
		return "$gt"
	case OpGreaterOrEqual:
		return "$gte"
	default:
		return "$eq"
	}
}

// mongoFilter folds q's filters into one document; filters on the same field share
// an operator map.
func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	for _, f := range q.filters {
		ops, ok := filter[f.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[f.Field] = ops
		}
		ops[mongoOperator(f.Op)] = f.Value
	}
	return filter
}

func findOptions(q Query) *options.FindOptions {
	opts := options.Find()
	if q.orderBy != "" {
		dir := 1
		if q.direction == Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.orderBy, Value: dir}, {Key: "_id", Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: insertedField, Value: 1}, {Key: "_id", Value: 1}})
	}
	if q.limit > 0 {
		opts.SetLimit(int64(q.limit))
	}
	if q.offset > 0 {
		opts.SetSkip(int64(q.offset))
	}
	return opts
}

// fromBSON converts a raw document into the store's value set.
func fromBSON(raw bson.M) Document {
	id, _ := raw["_id"].(string)
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" || k == insertedField {
			continue
		}
		switch t := v.(type) {
		case primitive.DateTime:
			fields[k] = t.Time().UTC()
		case int32:
			fields[k] = float64(t)
		case int64:
			fields[k] = float64(t)
		default:
			fields[k] = t
		}
	}
	return Document{ID: id, Fields: fields}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s: %w", collection, err)
	}
	doc := fromBSON(raw)
	return &doc, nil
}

func (s *MongoStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	cur, err := s.db.Collection(q.collection).Find(ctx, mongoFilter(q), findOptions(q))
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", q.collection, err)
	}
	defer cur.Close(ctx)

	var out []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", q.collection, err)
		}
		out = append(out, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("store: query %s: %w", q.collection, err)
	}
	return out, nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	doc := bson.M{"_id": id, insertedField: time.Now().UTC()}
	for k, v := range fields {
		doc[k] = normalize(v)
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("store: create %s: %w", collection, err)
	}
	return id, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = normalize(v)
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("store: update %s: %w", collection, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Stream(ctx context.Context, collection string, fn func(Document) error) error {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, findOptions(From(collection)))
	if err != nil {
		return fmt.Errorf("store: stream %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return fmt.Errorf("store: decode %s: %w", collection, err)
		}
		if err := fn(fromBSON(raw)); err != nil {
			return err
		}
	}
	return cur.Err()
}
