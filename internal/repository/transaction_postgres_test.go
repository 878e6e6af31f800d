package repository

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeQuery(t *testing.T) {
	owned := squirrel.Eq{"id": "65a1f0c2e4b0a1b2c3d4e5f6", "email": "real@x.com"}
	patch := []byte(`{"tags":[1]}`)

	sql, args, err := mergeQuery("transactions", owned, patch).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE transactions SET data = data || $1::jsonb WHERE email = $2 AND id = $3 AND data IS DISTINCT FROM (data || $4::jsonb)",
		sql,
	)
	assert.Equal(t, []interface{}{`{"tags":[1]}`, "real@x.com", "65a1f0c2e4b0a1b2c3d4e5f6", `{"tags":[1]}`}, args)
	assert.NotContains(t, sql, "@>", "containment skips patches that shrink arrays or nested objects")
}
