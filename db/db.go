package db

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client *mongo.Client

	UserCollection     *mongo.Collection
	PastryCollection   *mongo.Collection
	CategoryCollection *mongo.Collection
	DietCollection     *mongo.Collection
	CartItemCollection *mongo.Collection
	OrderCollection    *mongo.Collection
)

// Init connects to MongoDB and binds the collections. Called once from main
// before any traffic is served.
func Init() error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "fournildb"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	Client = client

	database := client.Database(dbName)
	UserCollection = database.Collection("users")
	PastryCollection = database.Collection("pastries")
	CategoryCollection = database.Collection("categories")
	DietCollection = database.Collection("diets")
	CartItemCollection = database.Collection("cartitems")
	OrderCollection = database.Collection("orders")

	return EnsureIndexes(ctx)
}

// EnsureIndexes creates the unique indexes the write paths rely on. The slug
// and email checks in the handlers exist to produce friendly errors; these
// indexes are what actually closes the check-then-insert window.
func EnsureIndexes(ctx context.Context) error {
	_, err := PastryCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// One cart line per (user, pastry): AddToCart upserts against this pair.
	_, err = CartItemCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "pastryId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = CategoryCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = DietCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects the client during shutdown.
func Close(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
