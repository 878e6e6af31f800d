package auth

import (
	"context"
	"errors"
)

// ErrMissingEmail is returned for otherwise valid tokens that carry no email claim.
var ErrMissingEmail = errors.New("token has no email claim")

// Identity is a caller whose token has been verified.
type Identity struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// Verifier validates a bearer token with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
