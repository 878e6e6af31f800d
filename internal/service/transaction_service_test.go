package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"finease/internal/models"
	"finease/internal/repository"
	"finease/internal/repository/mocks"
	"finease/pkg/auth"
	"finease/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

var (
	realUser  = &auth.Identity{UID: "uid-real", Email: "real@x.com"}
	otherUser = &auth.Identity{UID: "uid-other", Email: "other@x.com"}
)

func newService(t *testing.T) (*TransactionService, *mocks.MockTransactionRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTransactionRepository(ctrl)
	return NewTransactionService(repo, zap.NewNop()), repo
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the caller's records", func(t *testing.T) {
		svc, repo := newService(t)
		records := []models.Transaction{
			{"email": "real@x.com", "date": "2024-03-01", "amount": 10.0},
			{"email": "real@x.com", "date": "2024-01-01", "amount": 20.0},
		}
		repo.EXPECT().ListByOwner(gomock.Any(), "real@x.com").Return(records, nil)

		got, err := svc.List(ctx, realUser, "real@x.com")
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().ListByOwner(gomock.Any(), "real@x.com").Return(nil, nil)

		got, err := svc.List(ctx, realUser, "real@x.com")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("email is required", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().ListByOwner(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.List(ctx, realUser, "")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, ErrEmailRequired)
	})

	t.Run("listing another user's records is forbidden", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().ListByOwner(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.List(ctx, otherUser, "real@x.com")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unauthenticated caller", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.List(ctx, nil, "real@x.com")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("store unavailable", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().ListByOwner(gomock.Any(), "real@x.com").
			Return(nil, fmt.Errorf("%w: dial tcp: i/o timeout", store.ErrUnavailable))

		_, err := svc.List(ctx, realUser, "real@x.com")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()

	t.Run("returns the caller's record", func(t *testing.T) {
		svc, repo := newService(t)
		record := models.Transaction{"_id": id, "email": "real@x.com", "amount": 100.0}
		repo.EXPECT().GetByID(gomock.Any(), id).Return(record, nil)

		got, err := svc.Get(ctx, realUser, id.Hex())
		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("missing record is empty success", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

		got, err := svc.Get(ctx, realUser, id.Hex())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalid id never reaches the store", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Get(ctx, realUser, "not-a-valid-id")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("reading another user's record is forbidden", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).
			Return(models.Transaction{"_id": id, "email": "real@x.com"}, nil)

		_, err := svc.Get(ctx, otherUser, id.Hex())
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("record without an owner is forbidden", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(models.Transaction{"_id": id}, nil)

		_, err := svc.Get(ctx, realUser, id.Hex())
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner is forced to the caller", func(t *testing.T) {
		svc, repo := newService(t)
		newID := primitive.NewObjectID()
		payload := models.Transaction{"amount": 100.0, "category": "food", "email": "attacker@x.com"}

		repo.EXPECT().Insert(gomock.Any(), models.Transaction{
			"amount":   100.0,
			"category": "food",
			"email":    "real@x.com",
		}).Return(newID, nil)

		got, err := svc.Create(ctx, realUser, payload)
		require.NoError(t, err)
		assert.Equal(t, newID, got)
		assert.Equal(t, "attacker@x.com", payload["email"], "payload must not be mutated")
	})

	t.Run("client supplied id is dropped", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, doc models.Transaction) (primitive.ObjectID, error) {
				_, hasID := doc["_id"]
				assert.False(t, hasID)
				return primitive.NewObjectID(), nil
			})

		_, err := svc.Create(ctx, realUser, models.Transaction{"_id": "mine", "amount": 1.0})
		require.NoError(t, err)
	})

	t.Run("nil payload is invalid", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Create(ctx, realUser, nil)
		assert.ErrorIs(t, err, ErrInvalidBody)
	})

	t.Run("unexpected store error is wrapped", func(t *testing.T) {
		svc, repo := newService(t)
		boom := errors.New("write concern error")
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(primitive.NilObjectID, boom)

		_, err := svc.Create(ctx, realUser, models.Transaction{"amount": 1.0})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()
	owned := models.Transaction{"_id": id, "email": "real@x.com", "amount": 10.0, "category": "food"}

	t.Run("merges the patch", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(owned, nil)
		repo.EXPECT().Update(gomock.Any(), id, "real@x.com", models.Transaction{"amount": 50.0}).
			Return(&repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

		got, err := svc.Update(ctx, realUser, id.Hex(), models.Transaction{"amount": 50.0})
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.MatchedCount)
		assert.Equal(t, int64(1), got.ModifiedCount)
	})

	t.Run("owner and id cannot be patched", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(owned, nil)
		repo.EXPECT().Update(gomock.Any(), id, "real@x.com", models.Transaction{"note": "x"}).
			Return(&repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

		_, err := svc.Update(ctx, realUser, id.Hex(), models.Transaction{
			"_id":   primitive.NewObjectID(),
			"email": "attacker@x.com",
			"note":  "x",
		})
		require.NoError(t, err)
	})

	t.Run("invalid id never reaches the store", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Update(ctx, realUser, "xyz", models.Transaction{"amount": 1.0})
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("updating another user's record is forbidden", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(owned, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Update(ctx, otherUser, id.Hex(), models.Transaction{"amount": 1.0})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing record reports no match", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)
		repo.EXPECT().Update(gomock.Any(), id, "real@x.com", gomock.Any()).
			Return(&repository.UpdateResult{}, nil)

		got, err := svc.Update(ctx, realUser, id.Hex(), models.Transaction{"amount": 1.0})
		require.NoError(t, err)
		assert.Zero(t, got.MatchedCount)
	})

	t.Run("nil patch is invalid", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Update(ctx, realUser, id.Hex(), nil)
		assert.ErrorIs(t, err, ErrInvalidBody)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()

	t.Run("removes the caller's record", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(models.Transaction{"_id": id, "email": "real@x.com"}, nil)
		repo.EXPECT().Delete(gomock.Any(), id, "real@x.com").Return(int64(1), nil)

		n, err := svc.Delete(ctx, realUser, id.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("missing record is idempotent", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)
		repo.EXPECT().Delete(gomock.Any(), id, "real@x.com").Return(int64(0), nil)

		n, err := svc.Delete(ctx, realUser, id.Hex())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("invalid id never reaches the store", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Delete(ctx, realUser, "not-a-valid-id")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("deleting another user's record is forbidden", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(models.Transaction{"_id": id, "email": "real@x.com"}, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Delete(ctx, otherUser, id.Hex())
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("store unavailable on ownership lookup", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, fmt.Errorf("%w: no reachable servers", store.ErrUnavailable))

		_, err := svc.Delete(ctx, realUser, id.Hex())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(primitive.NewObjectID().Hex()))

	for _, id := range []string{"", "not-a-valid-id", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "abcdefghijkl"} {
		assert.ErrorIs(t, ValidateID(id), ErrInvalidID, id)
	}
}
