package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxStorefrontID contextKey = "storefront_id"

// StorefrontIDFromContext returns the storefront resolved from the route.
func StorefrontIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(ctxStorefrontID).(uuid.UUID)
	return id, ok
}

// WithStorefrontID injects the storefront identifier for downstream handlers.
func WithStorefrontID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStorefrontID, id)
}
