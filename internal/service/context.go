package service

import (
	"context"
	"fmt"
)

// ctxKey is a context key bound to the type of the value it stores
type ctxKey[T any] struct {
	name string
}

func (k ctxKey[T]) String() string {
	return fmt.Sprintf("service.ctxKey[%T](%s)", *new(T), k.name)
}

func setCtxValue[T any](ctx context.Context, key ctxKey[T], value T) context.Context {
	return context.WithValue(ctx, key, value)
}

func getCtxValue[T any](ctx context.Context, key ctxKey[T]) (T, bool) {
	value, ok := ctx.Value(key).(T)
	return value, ok
}

var requestIDKey = ctxKey[string]{name: "requestID"}

// WithRequestID stores the request ID of an RPC in ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return setCtxValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID the server assigned to the RPC handled under ctx
func RequestID(ctx context.Context) (string, bool) {
	return getCtxValue(ctx, requestIDKey)
}
