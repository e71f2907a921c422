package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

// RequestData is the authenticated identity attached to a request context by
// the auth middleware.
type RequestData struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type requestDataKey struct{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, ok := ctx.Value(requestDataKey{}).(*RequestData)
	if !ok {
		return nil
	}
	return rd
}
