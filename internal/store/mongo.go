package store

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neonpay/neonpay-gobackend/internal/models"
)

// MongoPaymentStore keeps payment requests in the "payments" collection.
type MongoPaymentStore struct {
	collection *mongo.Collection
}

func NewMongoPaymentStore(db *mongo.Database) *MongoPaymentStore {
	return &MongoPaymentStore{collection: db.Collection("payments")}
}

func (s *MongoPaymentStore) Insert(ctx context.Context, payment *models.PaymentRequest) (string, error) {
	payment.ID = primitive.NewObjectID().Hex()

	if _, err := s.collection.InsertOne(ctx, payment); err != nil {
		return "", fmt.Errorf("failed to save payment: %w", err)
	}
	return payment.ID, nil
}

func (s *MongoPaymentStore) Get(ctx context.Context, id string) (*models.PaymentRequest, error) {
	var payment models.PaymentRequest
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return &payment, nil
}

func (s *MongoPaymentStore) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPaymentStore) ListByOwner(ctx context.Context, ownerID string, filter PaymentFilter) ([]models.PaymentRequest, error) {
	query := bson.M{"owner_id": ownerID}
	if filter.Search != "" {
		query["payee_name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	defer cur.Close(ctx)

	var payments []models.PaymentRequest
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

// MongoUserStore keeps user accounts in the "user" collection.
type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection("user")}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) (string, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"username": user.Username})
	if err != nil {
		return "", fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return "", ErrUserExists
	}

	user.ID = primitive.NewObjectID().Hex()
	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}
	return user.ID, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) UpdateUsername(ctx context.Context, id, username string) (*models.User, error) {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"username": username}})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return s.FindByID(ctx, id)
}
