package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"finease/internal/models"
	"finease/pkg/store"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PoolProvider yields the pool and table backing the repository.
type PoolProvider interface {
	Pool(ctx context.Context) (*pgxpool.Pool, error)
	Table() string
}

// PostgresTransactionRepository stores records as JSONB rows keyed by ObjectID hex,
// so ids look the same as with the MongoDB backend.
type PostgresTransactionRepository struct {
	gateway PoolProvider
	logger  *zap.Logger
}

func NewPostgresTransactionRepository(gateway PoolProvider, logger *zap.Logger) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{
		gateway: gateway,
		logger:  logger,
	}
}

func (r *PostgresTransactionRepository) ListByOwner(ctx context.Context, email string) ([]models.Transaction, error) {
	db, err := r.gateway.Pool(ctx)
	if err != nil {
		return nil, err
	}

	query := squirrel.Select("id", "data").
		From(r.gateway.Table()).
		Where(squirrel.Eq{"email": email}).
		OrderBy("data->'date' DESC NULLS LAST").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, pgError(err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		tx, err := decodeRow(id, data)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, pgError(err)
	}

	return transactions, nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Transaction, error) {
	db, err := r.gateway.Pool(ctx)
	if err != nil {
		return nil, err
	}

	query := squirrel.Select("id", "data").
		From(r.gateway.Table()).
		Where(squirrel.Eq{"id": id.Hex()}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rowID string
	var data []byte
	err = db.QueryRow(ctx, sql, args...).Scan(&rowID, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, pgError(err)
	}

	return decodeRow(rowID, data)
}

func (r *PostgresTransactionRepository) Insert(ctx context.Context, doc models.Transaction) (primitive.ObjectID, error) {
	db, err := r.gateway.Pool(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}

	data, err := json.Marshal(doc.Without(models.FieldID))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to encode transaction: %w", err)
	}

	id := primitive.NewObjectID()
	query := squirrel.Insert(r.gateway.Table()).
		Columns("id", "email", "data").
		Values(id.Hex(), doc.Owner(), string(data)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return primitive.NilObjectID, err
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return primitive.NilObjectID, pgError(err)
	}
	return id, nil
}

func (r *PostgresTransactionRepository) Update(ctx context.Context, id primitive.ObjectID, owner string, patch models.Transaction) (*UpdateResult, error) {
	db, err := r.gateway.Pool(ctx)
	if err != nil {
		return nil, err
	}

	owned := squirrel.Eq{"id": id.Hex(), "email": owner}

	var modified int64
	if len(patch) > 0 {
		data, err := json.Marshal(patch)
		if err != nil {
			return nil, fmt.Errorf("failed to encode patch: %w", err)
		}

		sql, args, err := mergeQuery(r.gateway.Table(), owned, data).ToSql()
		if err != nil {
			return nil, err
		}

		tag, err := db.Exec(ctx, sql, args...)
		if err != nil {
			return nil, pgError(err)
		}
		modified = tag.RowsAffected()
	}

	if modified > 0 {
		return &UpdateResult{MatchedCount: modified, ModifiedCount: modified}, nil
	}

	matched, err := r.count(ctx, db, owned)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: matched}, nil
}

// mergeQuery overwrites the patched top-level keys. Rows the merge would leave
// unchanged are matched but not modified, as with $set.
func mergeQuery(table string, owned squirrel.Sqlizer, patch []byte) squirrel.UpdateBuilder {
	return squirrel.Update(table).
		Set("data", squirrel.Expr("data || ?::jsonb", string(patch))).
		Where(owned).
		Where(squirrel.Expr("data IS DISTINCT FROM (data || ?::jsonb)", string(patch))).
		PlaceholderFormat(squirrel.Dollar)
}

func (r *PostgresTransactionRepository) Delete(ctx context.Context, id primitive.ObjectID, owner string) (int64, error) {
	db, err := r.gateway.Pool(ctx)
	if err != nil {
		return 0, err
	}

	query := squirrel.Delete(r.gateway.Table()).
		Where(squirrel.Eq{"id": id.Hex(), "email": owner}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, pgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresTransactionRepository) count(ctx context.Context, db *pgxpool.Pool, where squirrel.Sqlizer) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From(r.gateway.Table()).
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, pgError(err)
	}
	return n, nil
}

func decodeRow(id string, data []byte) (models.Transaction, error) {
	tx := models.Transaction{}
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", id, err)
	}
	tx[models.FieldID] = id
	return tx, nil
}

func pgError(err error) error {
	var netErr net.Error
	if pgconn.Timeout(err) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}
