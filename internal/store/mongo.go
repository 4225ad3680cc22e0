package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"literature-lite/literature"
)

type mongoGame struct {
	ID        string    `bson:"_id"`
	Code      string    `bson:"code"`
	Status    string    `bson:"status"`
	Seq       int       `bson:"seq"`
	Snapshot  string    `bson:"snapshot"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Mongo stores one document per game in the "games" collection.
type Mongo struct {
	cli   *mongo.Client
	games *mongo.Collection
}

func NewMongo(ctx context.Context, uri, db string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	games := cli.Database(db).Collection("games")
	_, err = games.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return &Mongo{cli: cli, games: games}, nil
}

func (m *Mongo) Save(ctx context.Context, snap literature.Snapshot) error {
	raw, err := encode(snap)
	if err != nil {
		return err
	}
	doc := mongoGame{
		ID:        snap.ID,
		Code:      snap.Code,
		Status:    snap.Status.String(),
		Seq:       snap.Seq,
		Snapshot:  string(raw),
		UpdatedAt: snap.UpdatedAt,
	}
	// the seq filter keeps a newer document; a duplicate key then means
	// this snapshot is stale
	filter := bson.M{"_id": snap.ID, "seq": bson.M{"$lte": snap.Seq}}
	_, err = m.games.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mongo save %s: %w", snap.ID, err)
	}
	return nil
}

func (m *Mongo) Load(ctx context.Context, gameID string) (literature.Snapshot, error) {
	return m.findOne(ctx, bson.M{"_id": gameID}, nil)
}

func (m *Mongo) LoadByCode(ctx context.Context, code string) (literature.Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return m.findOne(ctx, bson.M{"code": code}, opts)
}

func (m *Mongo) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (literature.Snapshot, error) {
	var doc mongoGame
	var res *mongo.SingleResult
	if opts != nil {
		res = m.games.FindOne(ctx, filter, opts)
	} else {
		res = m.games.FindOne(ctx, filter)
	}
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return literature.Snapshot{}, ErrNotFound
		}
		return literature.Snapshot{}, fmt.Errorf("mongo load: %w", err)
	}
	return decode([]byte(doc.Snapshot))
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.cli.Disconnect(ctx)
}
