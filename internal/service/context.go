package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const ctxActorKey ctxKey = "actorID"

// WithActor attaches the authenticated user performing the operation.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxActorKey, id)
}

func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxActorKey).(uuid.UUID)
	return v, ok && v != uuid.Nil
}

func requireActor(ctx context.Context) (uuid.UUID, error) {
	id, ok := ActorFromContext(ctx)
	if !ok {
		return uuid.Nil, ErrActorRequired
	}
	return id, nil
}
