package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"draftboard/pkg/diagram"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // defaults to "draftboard"
	Collection string // defaults to "diagrams"
}

// mongoDoc wraps a diagram for storage, keyed by logical name rather than
// diagram id so re-saving under the same name overwrites.
type mongoDoc struct {
	Name       string           `bson:"_id"`
	Diagram    *diagram.Diagram `bson:"diagram"`
	ModifiedAt time.Time        `bson:"modified_at"`
}

// MongoStore persists diagrams as BSON documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "draftboard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "diagrams"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (*diagram.Diagram, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load diagram %s: %w", name, err)
	}
	return doc.Diagram, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, d *diagram.Diagram) error {
	doc := mongoDoc{Name: name, Diagram: d, ModifiedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, opts); err != nil {
		return fmt.Errorf("save diagram %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("delete diagram %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	defer cur.Close(ctx)

	var out []Info
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		info := Info{Name: doc.Name, ModifiedAt: doc.ModifiedAt}
		if doc.Diagram != nil {
			info.Nodes = len(doc.Diagram.Nodes)
			info.Edges = len(doc.Diagram.Edges)
		}
		out = append(out, info)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
