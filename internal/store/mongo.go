package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps a collection to a MongoDB collection and a document to a
// document with that _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (ms *MongoStore) Save(ctx context.Context, collection, document string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range patch {
		set[k] = v
	}
	_, err := ms.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": document},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo upsert %s/%s: %w", collection, document, err)
	}
	return nil
}

func (ms *MongoStore) Load(ctx context.Context, collection, document string) (map[string]any, error) {
	var doc bson.M
	err := ms.db.Collection(collection).FindOne(ctx, bson.M{"_id": document}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s/%s: %w", collection, document, err)
	}
	delete(doc, "_id")
	return doc, nil
}

func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}
