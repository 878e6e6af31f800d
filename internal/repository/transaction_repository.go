package repository

import (
	"context"

	"finease/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:generate mockgen -source=transaction_repository.go -destination=mocks/mock_transaction_repository.go -package=mocks TransactionRepository

// TransactionRepository is the document collection holding finance records.
type TransactionRepository interface {
	// ListByOwner returns every record owned by email, newest date first.
	ListByOwner(ctx context.Context, email string) ([]models.Transaction, error)
	// GetByID returns nil, nil when no record has the id.
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Transaction, error)
	Insert(ctx context.Context, doc models.Transaction) (primitive.ObjectID, error)
	// Update merges patch into the record with id owned by owner.
	Update(ctx context.Context, id primitive.ObjectID, owner string, patch models.Transaction) (*UpdateResult, error)
	// Delete removes the record with id owned by owner and reports how many were removed.
	Delete(ctx context.Context, id primitive.ObjectID, owner string) (int64, error)
}

type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}
