package internal

import (
	"context"
	"net/http"
)

type ctxKey int

const ctxKeyHTTP ctxKey = iota

type httpPair struct {
	w http.ResponseWriter
	r *http.Request
}

// withHTTP stashes the raw writer and request in the context so
// handlers that manage cookies (login, logout) can reach them.
func withHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, ctxKeyHTTP, httpPair{w: w, r: r})
}

// ResponseWriterFrom returns the raw response writer and request for
// the dispatch in flight, or nil outside a dispatch.
func ResponseWriterFrom(ctx context.Context) (http.ResponseWriter, *http.Request) {
	pair, ok := ctx.Value(ctxKeyHTTP).(httpPair)
	if !ok {
		return nil, nil
	}
	return pair.w, pair.r
}
