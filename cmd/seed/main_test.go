package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"finease/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTransactions(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	docs := sampleTransactions(3, now)

	require.Len(t, docs, 3)
	assert.Equal(t, "2024-05-10T12:00:00Z", docs[0]["date"])
	assert.Equal(t, "2024-05-08T12:00:00Z", docs[2]["date"])
	for _, doc := range docs {
		assert.NotContains(t, doc, "email")
		assert.Contains(t, sampleCategories, doc["category"])
	}
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("IDENTITY_PROVIDER", "jwt")
	t.Setenv("JWT_SECRET_KEY", "seed-test-key")
	t.Setenv("JWT_ISSUER", "seed-test")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--email", "real@x.com", "--uid", "u-42"})
	require.NoError(t, root.Execute())

	manager := auth.NewJWTManager("seed-test-key", "seed-test", time.Hour)
	identity, err := manager.Verify(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "real@x.com", identity.Email)
	assert.Equal(t, "u-42", identity.UID)
}

func TestTokenCmd_RequiresEmail(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token"})
	assert.Error(t, root.Execute())
}
