package repository

import (
	"context"
	"errors"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderMongoRepository struct {
	collection *mongo.Collection
}

func NewOrderMongoRepository(db *mongo.Database) *OrderMongoRepository {
	return &OrderMongoRepository{collection: db.Collection("orders")}
}

func (r *OrderMongoRepository) Save(ctx context.Context, order model.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	return err
}

func (r *OrderMongoRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.collection.FindOne(ctx, bson.M{"id": orderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderMongoRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentMethod != "" {
		filter["paymentMethod"] = f.PaymentMethod
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(f.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return []model.Order{}, err
	}

	orders := []model.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func (r *OrderMongoRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) (model.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": at,
	}}

	var o model.Order
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"id": orderID}, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}
