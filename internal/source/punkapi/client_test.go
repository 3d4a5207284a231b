package punkapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taproom/internal/core/window"
)

const pageOne = `[
  {"id": 1, "name": "Buzz", "abv": 4.5, "ibu": null, "volume": {"value": 20, "unit": "litres"}},
  {"id": 2, "name": "Trashy Blonde", "abv": 4.1}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc, retryMax int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{
		BaseURL:      srv.URL + "/v2/",
		PerPage:      2,
		Timeout:      time.Second,
		RetryMax:     retryMax,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})
}

func TestClient_FetchPage(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pageOne))
	}, 0)

	recipes, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "/v2/beers", gotPath)
	assert.Equal(t, "page=1&per_page=2", gotQuery)

	require.Len(t, recipes, 2)
	assert.Equal(t, window.ID(1), recipes[0].ItemID())
	assert.Equal(t, "Buzz", recipes[0].Name)
	assert.Nil(t, recipes[0].IBU)
	assert.Equal(t, "litres", recipes[0].Volume.Unit)
}

func TestClient_PageBelowOne(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, 0)

	_, err := client.FetchPage(context.Background(), 0)
	require.ErrorIs(t, err, window.ErrNoPage)
	assert.Zero(t, calls.Load())
}

func TestClient_MissingPages(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "invalid page", http.StatusBadRequest)
			},
		},
		{
			name: "empty array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, 0)

			_, err := client.FetchPage(context.Background(), 9)
			require.ErrorIs(t, err, window.ErrNoPage)
		})
	}
}

func TestClient_ServerErrorIsAmbiguous(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, 2)

	_, err := client.FetchPage(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, window.ErrNoPage)
	assert.ErrorIs(t, err, ErrStatus)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(pageOne))
	}, 3)

	recipes, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DecodeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "not a list"}`))
	}, 0)

	_, err := client.FetchPage(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, window.ErrNoPage)
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageOne))
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPage(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStatusError_Missing(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusNotFound, true},
		{http.StatusBadRequest, true},
		{http.StatusTooManyRequests, false},
		{http.StatusInternalServerError, false},
		{http.StatusMovedPermanently, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := &StatusError{Page: 1, Code: tt.code}
			assert.Equal(t, tt.want, err.Missing())
			assert.Equal(t, tt.want, errors.Is(err, window.ErrNoPage))
			assert.ErrorIs(t, err, ErrStatus)
		})
	}
}
