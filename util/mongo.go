package util

import (
	"context"
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDb struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Client   *mongo.Client
}

func (self *MongoDb) DSN() string {
	port := self.Port
	if port == 0 {
		port = 27017
	}
	if self.User == "" {
		return fmt.Sprintf("mongodb://%s:%d/?connect=direct", self.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/?connect=direct&authSource=admin",
		url.QueryEscape(self.User), url.QueryEscape(self.Password), self.Host, port)
}

// Init builds the client. The driver connects lazily, so an unreachable
// server shows up on the first query rather than here.
func (self *MongoDb) Init(ctx context.Context) (err error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(self.DSN()))
	if err != nil {
		return fmt.Errorf("MongoDb.Init -> %w", err)
	}
	self.Client = client
	return
}

func (self *MongoDb) Close(ctx context.Context) error {
	if self.Client == nil {
		return nil
	}
	return self.Client.Disconnect(ctx)
}

func (self *MongoDb) Tb(tbname string) *mongo.Collection {
	return self.Client.Database(self.Database).Collection(tbname)
}

// Count counts the documents of a collection matching filter.
func (self *MongoDb) Count(ctx context.Context, tbname string, filter bson.D) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	return self.Tb(tbname).CountDocuments(ctx, filter)
}

// FindAll returns the documents of a collection matching filter, in _id order.
func (self *MongoDb) FindAll(ctx context.Context, tbname string, filter bson.D) ([]bson.D, error) {
	if filter == nil {
		filter = bson.D{}
	}
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := self.Tb(tbname).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("FindAll:Find -> %w", err)
	}
	defer cur.Close(ctx)

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("FindAll:Decode -> %w", err)
	}
	return docs, nil
}

// Aggregate runs pipeline on a collection and returns every output document.
func (self *MongoDb) Aggregate(ctx context.Context, tbname string, pipeline any) ([]bson.D, error) {
	cur, err := self.Tb(tbname).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("Aggregate -> %w", err)
	}
	defer cur.Close(ctx)

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("Aggregate:Decode -> %w", err)
	}
	return docs, nil
}
