package prefs

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures the Mongo-backed store.
type MongoConfig struct {
	// URI is the Mongo connection string.
	URI string `toml:"uri"`

	// Database defaults to "archmap".
	Database string `toml:"database"`

	// Collection defaults to "prefs".
	Collection string `toml:"collection"`

	// Owner scopes the preferences document, so one collection can hold
	// preferences for multiple users or installs. Defaults to "default".
	Owner string `toml:"owner"`
}

// MongoStore persists preferences in a Mongo collection, one document per
// owner.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	owner      string
}

// mongoDoc is the stored document shape.
type mongoDoc struct {
	Owner string `bson:"owner"`
	Prefs Prefs  `bson:"prefs"`
}

// NewMongoStore connects to Mongo and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "archmap"
	}
	if cfg.Collection == "" {
		cfg.Collection = "prefs"
	}
	if cfg.Owner == "" {
		cfg.Owner = "default"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		owner:      cfg.Owner,
	}, nil
}

// Get retrieves the owner's preferences, or the defaults if none exist.
func (s *MongoStore) Get(ctx context.Context) (Prefs, error) {
	var doc mongoDoc
	err := s.collection.FindOne(ctx, bson.M{"owner": s.owner}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return DefaultPrefs(), nil
	}
	if err != nil {
		return Prefs{}, err
	}
	return doc.Prefs, nil
}

// Set upserts the owner's preferences.
func (s *MongoStore) Set(ctx context.Context, p Prefs) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"owner": s.owner},
		mongoDoc{Owner: s.owner, Prefs: p},
		options.Replace().SetUpsert(true))
	return err
}

// Close disconnects from Mongo.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
