package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/summarist/pkg/logger"
)

// MongoStore maps the path-addressed document model onto a single MongoDB
// collection. Each record keeps its full path as _id, its parent collection
// path for queries and the user fields under "data".
type MongoStore struct {
	coll         *mongo.Collection
	pollInterval time.Duration
	logger       *slog.Logger
}

// MongoOption configures MongoStore.
type MongoOption func(*MongoStore)

// WithPollInterval sets the polling interval used by Watch when change
// streams are not available (standalone servers).
func WithPollInterval(d time.Duration) MongoOption {
	return func(s *MongoStore) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithMongoLogger sets the logger.
func WithMongoLogger(l *slog.Logger) MongoOption {
	return func(s *MongoStore) {
		if l != nil {
			s.logger = l
		}
	}
}

type mongoRecord struct {
	ID        string    `bson:"_id"`
	Parent    string    `bson:"parent"`
	Data      bson.M    `bson:"data"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore creates a store over the given collection.
func NewMongoStore(db *mongo.Database, collection string, opts ...MongoOption) *MongoStore {
	s := &MongoStore{
		coll:         db.Collection(collection),
		pollInterval: time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the parent index used by Query.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "parent", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create docstore indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, path string) (*Document, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return nil, err
	}
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: path}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", path, err)
	}
	return rec.document(), nil
}

func (s *MongoStore) Set(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	for k, v := range fields {
		set = append(set, bson.E{Key: "data." + k, Value: v})
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: versionIncrement},
		{Key: "$setOnInsert", Value: s.insertDefaults(path)},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: path}}, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set document %s: %w", path, err)
	}
	return nil
}

// Create relies on the unique _id index, so concurrent creators of the same
// path get exactly one winner.
func (s *MongoStore) Create(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	_, err := s.coll.InsertOne(ctx, newRecord(path, fields, time.Now().UTC()))
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create document %s: %w", path, err)
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return "", err
	}
	path := Join(collection, uuid.NewString())
	if _, err := s.coll.InsertOne(ctx, newRecord(path, fields, time.Now().UTC())); err != nil {
		return "", fmt.Errorf("failed to add document to %s: %w", collection, err)
	}
	return path, nil
}

func (s *MongoStore) ArrayUnion(ctx context.Context, path, field string, values ...any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "data." + field, Value: bson.D{{Key: "$each", Value: values}}}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
		{Key: "$inc", Value: versionIncrement},
		{Key: "$setOnInsert", Value: s.insertDefaults(path)},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: path}}, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to add to %s.%s: %w", path, field, err)
	}
	return nil
}

func (s *MongoStore) ArrayRemove(ctx context.Context, path, field string, values ...any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "data." + field, Value: bson.D{{Key: "$in", Value: values}}}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
		{Key: "$inc", Value: versionIncrement},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: path}}, update); err != nil {
		return fmt.Errorf("failed to remove from %s.%s: %w", path, field, err)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	filter, err := queryFilter(collection, filters)
	if err != nil {
		return nil, err
	}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	var recs []mongoRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	docs := make([]*Document, 0, len(recs))
	for i := range recs {
		docs = append(docs, recs[i].document())
	}
	return docs, nil
}

func (s *MongoStore) Delete(ctx context.Context, path string) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: path}}); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", path, err)
	}
	return nil
}

// Watch uses a change stream when the deployment supports it and falls back
// to polling otherwise.
func (s *MongoStore) Watch(ctx context.Context, path string) (<-chan *Document, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: path}}}},
	}
	stream, streamErr := s.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if streamErr != nil {
		s.logger.DebugContext(ctx, "change stream unavailable, polling instead",
			logger.Component("docstore"),
			logger.Error(streamErr),
		)
	}

	current, err := s.Get(ctx, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		if stream != nil {
			_ = stream.Close(context.WithoutCancel(ctx))
		}
		return nil, err
	}

	out := make(chan *Document, 16)
	go func() {
		defer close(out)
		if current != nil && !send(ctx, out, current) {
			if stream != nil {
				_ = stream.Close(context.WithoutCancel(ctx))
			}
			return
		}
		if stream != nil {
			s.streamChanges(ctx, stream, out)
			return
		}
		s.pollChanges(ctx, path, current, out)
	}()

	return out, nil
}

func (s *MongoStore) streamChanges(ctx context.Context, stream *mongo.ChangeStream, out chan<- *Document) {
	defer func() { _ = stream.Close(context.WithoutCancel(ctx)) }()

	for stream.Next(ctx) {
		var event struct {
			FullDocument *mongoRecord `bson:"fullDocument"`
		}
		if err := stream.Decode(&event); err != nil {
			s.logger.WarnContext(ctx, "failed to decode change event",
				logger.Component("docstore"),
				logger.Error(err),
			)
			continue
		}
		if event.FullDocument == nil {
			continue
		}
		if !send(ctx, out, event.FullDocument.document()) {
			return
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.logger.WarnContext(ctx, "change stream stopped",
			logger.Component("docstore"),
			logger.Error(err),
		)
	}
}

func (s *MongoStore) pollChanges(ctx context.Context, path string, last *Document, out chan<- *Document) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			doc, err := s.Get(ctx, path)
			if err != nil {
				if !errors.Is(err, ErrNotFound) && ctx.Err() == nil {
					s.logger.WarnContext(ctx, "failed to poll document",
						logger.Component("docstore"),
						logger.Error(err),
					)
				}
				continue
			}
			if !changedSince(last, doc) {
				continue
			}
			last = doc
			if !send(ctx, out, doc) {
				return
			}
		}
	}
}

// changedSince compares versions since updated_at may repeat within the
// clock resolution.
func changedSince(last, doc *Document) bool {
	return last == nil || doc.Version != last.Version
}

var versionIncrement = bson.D{{Key: "version", Value: int64(1)}}

func queryFilter(collection string, filters []Filter) (bson.D, error) {
	filter := bson.D{{Key: "parent", Value: collection}}
	for _, f := range filters {
		switch f.Op {
		case OpEqual:
			filter = append(filter, bson.E{Key: "data." + f.Field, Value: f.Value})
		case OpIn:
			filter = append(filter, bson.E{Key: "data." + f.Field, Value: bson.D{{Key: "$in", Value: f.Value}}})
		default:
			return nil, fmt.Errorf("docstore: unsupported filter operator %q", f.Op)
		}
	}
	return filter, nil
}

func newRecord(path string, fields map[string]any, now time.Time) mongoRecord {
	parent, _ := Split(path)
	rec := mongoRecord{
		ID:        path,
		Parent:    parent,
		Data:      bson.M(fields),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rec.Data == nil {
		rec.Data = bson.M{}
	}
	return rec
}

func (s *MongoStore) insertDefaults(path string) bson.D {
	parent, _ := Split(path)
	return bson.D{
		{Key: "parent", Value: parent},
		{Key: "created_at", Value: time.Now().UTC()},
	}
}

func (r *mongoRecord) document() *Document {
	fields, _ := normalizeBSON(r.Data).(map[string]any)
	if fields == nil {
		fields = map[string]any{}
	}
	return &Document{
		Path:      r.ID,
		Fields:    fields,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// normalizeBSON converts driver container types into plain maps and slices.
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeBSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeBSON(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeBSON(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeBSON(item)
		}
		return out
	case bson.DateTime:
		return val.Time().UTC()
	case int32:
		return int64(val)
	default:
		return val
	}
}

func send(ctx context.Context, out chan<- *Document, doc *Document) bool {
	select {
	case out <- doc:
		return true
	case <-ctx.Done():
		return false
	}
}
