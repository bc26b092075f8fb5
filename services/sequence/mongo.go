package seqsvc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
)

const sequencesCollection = "sequences"

func OpenMongo(ctx context.Context, conf core.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongo")
	}
	return client, nil
}

type sequenceDoc struct {
	ID    string `bson:"_id"`
	Kind  string `bson:"kind"`
	Year  int    `bson:"year"`
	Value int64  `bson:"value"`
}

type mongoCounter struct {
	coll *mongo.Collection
}

var _ ident.Counter = (*mongoCounter)(nil) // interface compliance check

func NewMongoCounter(db *mongo.Database) ident.Counter {
	return &mongoCounter{coll: db.Collection(sequencesCollection)}
}

func docID(kind ident.Kind, year int) string {
	return fmt.Sprintf("%s:%d", kind, year)
}

func (c *mongoCounter) Next(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	update := bson.M{
		"$inc":         bson.M{"value": 1},
		"$setOnInsert": bson.M{"kind": string(kind), "year": year},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc sequenceDoc
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": docID(kind, year)}, update, opts).Decode(&doc)
	if err != nil {
		return 0, errors.Wrap(err, "mongo $inc")
	}
	return doc.Value, nil
}

func (c *mongoCounter) Seed(ctx context.Context, kind ident.Kind, year int, value int64) error {
	update := bson.M{
		"$max":         bson.M{"value": value},
		"$setOnInsert": bson.M{"kind": string(kind), "year": year},
	}
	_, err := c.coll.UpdateOne(ctx, bson.M{"_id": docID(kind, year)}, update, options.Update().SetUpsert(true))
	return errors.Wrap(err, "mongo $max")
}

func (c *mongoCounter) Current(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	var doc sequenceDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": docID(kind, year)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "mongo find")
	}
	return doc.Value, nil
}
