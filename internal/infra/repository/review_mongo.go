package repository

import (
	"context"

	"wholesale/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewMongoRepository struct {
	collection *mongo.Collection
}

func NewReviewMongoRepository(db *mongo.Database) *ReviewMongoRepository {
	return &ReviewMongoRepository{collection: db.Collection("reviews")}
}

func (r *ReviewMongoRepository) Create(ctx context.Context, review model.Review) error {
	_, err := r.collection.InsertOne(ctx, review)
	return err
}

func (r *ReviewMongoRepository) ListByProductID(ctx context.Context, productID string, limit int) ([]model.Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return []model.Review{}, err
	}

	reviews := []model.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return []model.Review{}, err
	}
	return reviews, nil
}

func (r *ReviewMongoRepository) Summary(ctx context.Context, productID string) (model.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$productId",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return model.RatingSummary{}, err
	}

	var rows []struct {
		Average float64 `bson:"average"`
		Count   int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return model.RatingSummary{}, err
	}
	if len(rows) == 0 {
		return model.RatingSummary{}, nil
	}
	return model.RatingSummary{Average: rows[0].Average, Count: rows[0].Count}, nil
}
