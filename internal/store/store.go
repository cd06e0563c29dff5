// Package store is the typed client for the remote backing store. Every
// read is scoped to the identity passed by the caller and every write stamps
// that identity as owner. The package holds no cache and no ambient state;
// caching is the coordinator's job.
package store

import (
	"context"
	"errors"
	"net"

	"gorm.io/gorm"

	apperrors "fincoach/internal/errors"
)

// Client exposes one method per entity per operation over the backing store.
type Client struct {
	db     *gorm.DB
	tokens *TokenIssuer
}

// NewClient creates a backing-store client.
func NewClient(db *gorm.DB, tokens *TokenIssuer) *Client {
	return &Client{db: db, tokens: tokens}
}

// conn returns a request-scoped handle.
func (c *Client) conn(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}

// wrap maps a raw store error into the application taxonomy. notFound is the
// sentinel to use when the target row does not exist or is not owned by the
// caller's identity; callers cannot tell the two apart.
func wrap(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.ErrConflict, err)
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrUnavailable, err)
	default:
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
}

// requireIdentity rejects calls made without an identity before any I/O.
func requireIdentity(userID string) error {
	if userID == "" {
		return apperrors.ErrUnauthenticated
	}
	return nil
}
