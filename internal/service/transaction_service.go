package service

import (
	"context"
	"errors"
	"fmt"

	"finease/internal/models"
	"finease/internal/repository"
	"finease/pkg/auth"
	"finease/pkg/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TransactionService is ownership-scoped CRUD over the transactions collection.
// Every record may only be read or written by the caller whose email it carries.
type TransactionService struct {
	repo   repository.TransactionRepository
	logger *zap.Logger
}

func NewTransactionService(repo repository.TransactionRepository, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the records owned by ownerEmail, newest first. Callers may only list their own.
func (s *TransactionService) List(ctx context.Context, caller *auth.Identity, ownerEmail string) ([]models.Transaction, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if ownerEmail == "" {
		return nil, ErrEmailRequired
	}
	if ownerEmail != caller.Email {
		s.logger.Warn("Listing another user's transactions refused",
			zap.String("caller", caller.Email),
			zap.String("requested", ownerEmail),
		)
		return nil, ErrNotOwner
	}

	transactions, err := s.repo.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// Get returns the record with id, or nil when there is none.
func (s *TransactionService) Get(ctx context.Context, caller *auth.Identity, id string) (models.Transaction, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, storeError("get transaction", err)
	}
	if tx == nil {
		return nil, nil
	}
	if !tx.OwnedBy(caller.Email) {
		s.logger.Warn("Reading another user's transaction refused",
			zap.String("caller", caller.Email),
			zap.String("id", id),
		)
		return nil, ErrNotOwner
	}
	return tx, nil
}

// Create stores payload as a new record owned by the caller, whatever email it claims.
func (s *TransactionService) Create(ctx context.Context, caller *auth.Identity, payload models.Transaction) (primitive.ObjectID, error) {
	if caller == nil {
		return primitive.NilObjectID, ErrUnauthenticated
	}
	if payload == nil {
		return primitive.NilObjectID, ErrInvalidBody
	}

	doc := payload.Without(models.FieldID)
	doc[models.FieldEmail] = caller.Email

	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, storeError("create transaction", err)
	}

	s.logger.Debug("Transaction created", zap.String("id", id.Hex()), zap.String("owner", caller.Email))
	return id, nil
}

// Update merges patch into the caller's record. The id and owner fields cannot be patched.
func (s *TransactionService) Update(ctx context.Context, caller *auth.Identity, id string, patch models.Transaction) (*repository.UpdateResult, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, ErrInvalidBody
	}

	if err := s.checkOwner(ctx, caller, oid); err != nil {
		return nil, err
	}

	result, err := s.repo.Update(ctx, oid, caller.Email, patch.Without(models.FieldID, models.FieldEmail))
	if err != nil {
		return nil, storeError("update transaction", err)
	}
	return result, nil
}

// Delete removes the caller's record. Deleting a missing record is not an error.
func (s *TransactionService) Delete(ctx context.Context, caller *auth.Identity, id string) (int64, error) {
	if caller == nil {
		return 0, ErrUnauthenticated
	}
	oid, err := parseID(id)
	if err != nil {
		return 0, err
	}

	if err := s.checkOwner(ctx, caller, oid); err != nil {
		return 0, err
	}

	deleted, err := s.repo.Delete(ctx, oid, caller.Email)
	if err != nil {
		return 0, storeError("delete transaction", err)
	}
	return deleted, nil
}

// checkOwner fails with ErrNotOwner when the record exists and belongs to someone else.
// Writes still filter on the owner, so a record changing hands in between is not touched.
func (s *TransactionService) checkOwner(ctx context.Context, caller *auth.Identity, id primitive.ObjectID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storeError("load transaction", err)
	}
	if existing != nil && !existing.OwnedBy(caller.Email) {
		s.logger.Warn("Writing another user's transaction refused",
			zap.String("caller", caller.Email),
			zap.String("id", id.Hex()),
		)
		return ErrNotOwner
	}
	return nil
}

// ValidateID fails with ErrInvalidID unless id is a 24-character hex ObjectID.
func ValidateID(id string) error {
	_, err := parseID(id)
	return err
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func storeError(op string, err error) error {
	if errors.Is(err, store.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
