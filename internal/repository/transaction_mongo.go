package repository

import (
	"context"
	"errors"
	"fmt"

	"finease/internal/models"
	"finease/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionProvider yields the collection backing the repository.
type CollectionProvider interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

type MongoTransactionRepository struct {
	gateway CollectionProvider
	logger  *zap.Logger
}

func NewMongoTransactionRepository(gateway CollectionProvider, logger *zap.Logger) *MongoTransactionRepository {
	return &MongoTransactionRepository{
		gateway: gateway,
		logger:  logger,
	}
}

func (r *MongoTransactionRepository) ListByOwner(ctx context.Context, email string) ([]models.Transaction, error) {
	coll, err := r.gateway.Collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: models.FieldDate, Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{models.FieldEmail: email}, opts)
	if err != nil {
		return nil, mongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoError(err)
	}

	transactions := make([]models.Transaction, 0, len(docs))
	for _, doc := range docs {
		transactions = append(transactions, models.Transaction(doc))
	}
	return transactions, nil
}

func (r *MongoTransactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Transaction, error) {
	coll, err := r.gateway.Collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = coll.FindOne(ctx, bson.M{models.FieldID: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoError(err)
	}
	return models.Transaction(doc), nil
}

func (r *MongoTransactionRepository) Insert(ctx context.Context, doc models.Transaction) (primitive.ObjectID, error) {
	coll, err := r.gateway.Collection(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id := primitive.NewObjectID()
	record := doc.Without(models.FieldID)
	record[models.FieldID] = id

	if _, err := coll.InsertOne(ctx, bson.M(record)); err != nil {
		return primitive.NilObjectID, mongoError(err)
	}
	return id, nil
}

func (r *MongoTransactionRepository) Update(ctx context.Context, id primitive.ObjectID, owner string, patch models.Transaction) (*UpdateResult, error) {
	coll, err := r.gateway.Collection(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{models.FieldID: id, models.FieldEmail: owner}
	if len(patch) == 0 {
		// $set rejects an empty document; report the match only.
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, mongoError(err)
		}
		return &UpdateResult{MatchedCount: n}, nil
	}

	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M(patch)})
	if err != nil {
		return nil, mongoError(err)
	}
	return &UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (r *MongoTransactionRepository) Delete(ctx context.Context, id primitive.ObjectID, owner string) (int64, error) {
	coll, err := r.gateway.Collection(ctx)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteOne(ctx, bson.M{models.FieldID: id, models.FieldEmail: owner})
	if err != nil {
		return 0, mongoError(err)
	}
	return res.DeletedCount, nil
}

func mongoError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}
