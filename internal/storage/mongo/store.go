package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

type store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore wraps an established client/database pair as a storage.Store.
func NewStore(client *mongo.Client, db *mongo.Database) storage.Store {
	return &store{client: client, db: db}
}

func (s *store) InsertOne(ctx context.Context, collection string, doc model.Resource) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, map[string]interface{}(doc))
	return model.WrapError(err)
}

func (s *store) FindOne(ctx context.Context, collection string, criteria storage.Criteria, opts *storage.FindOptions) (model.Resource, error) {
	findOpts := options.FindOne()
	if projection := makeProjection(opts); projection != nil {
		findOpts.SetProjection(projection)
	}

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, makeFilter(criteria), findOpts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, model.WrapError(err)
	}
	return toResource(doc), nil
}

func (s *store) Find(ctx context.Context, collection string, criteria storage.Criteria, opts *storage.FindOptions) ([]model.Resource, error) {
	findOpts := options.Find()
	if projection := makeProjection(opts); projection != nil {
		findOpts.SetProjection(projection)
	}
	if opts != nil {
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
		if len(opts.Sort) > 0 {
			sort := bson.D{}
			for _, o := range opts.Sort {
				dir := 1
				if o.Desc {
					dir = -1
				}
				sort = append(sort, bson.E{Key: o.Field, Value: dir})
			}
			findOpts.SetSort(sort)
		}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, makeFilter(criteria), findOpts)
	if err != nil {
		return nil, model.WrapError(err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, model.WrapError(err)
	}

	docs := make([]model.Resource, 0, len(raw))
	for _, doc := range raw {
		docs = append(docs, toResource(doc))
	}
	return docs, nil
}

func (s *store) Count(ctx context.Context, collection string, criteria storage.Criteria) (int64, error) {
	count, err := s.db.Collection(collection).CountDocuments(ctx, makeFilter(criteria))
	return count, model.WrapError(err)
}

func (s *store) UpdateOne(ctx context.Context, collection string, criteria storage.Criteria, patch model.Resource) error {
	update := bson.M{"$set": map[string]interface{}(patch)}
	result, err := s.db.Collection(collection).UpdateOne(ctx, makeFilter(criteria), update, options.Update().SetUpsert(false))
	if err != nil {
		return model.WrapError(err)
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *store) DeleteOne(ctx context.Context, collection string, criteria storage.Criteria) error {
	result, err := s.db.Collection(collection).DeleteOne(ctx, makeFilter(criteria))
	if err != nil {
		return model.WrapError(err)
	}
	if result.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *store) Close(ctx context.Context) error {
	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}

func makeFilter(criteria storage.Criteria) bson.M {
	filter := bson.M{}
	for k, v := range criteria {
		filter[k] = v
	}
	return filter
}

func makeProjection(opts *storage.FindOptions) bson.M {
	if opts == nil || len(opts.Projection) == 0 {
		return nil
	}
	projection := bson.M{}
	for _, field := range opts.Projection {
		projection[field] = 1
	}
	return projection
}

// toResource converts a decoded BSON document into the neutral resource
// form: nested bson.M and bson.A become plain maps and slices so the rest
// of the system never sees driver types.
func toResource(doc bson.M) model.Resource {
	return model.Resource(normalizeMap(doc))
}

func normalizeMap(m bson.M) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		return normalizeMap(val)
	case map[string]interface{}:
		return normalizeMap(bson.M(val))
	case bson.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return v
	}
}
