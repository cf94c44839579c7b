package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func TestHTTPClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stock/AAA/quote":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Header().Set("X-Source", "test")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"symbol":"AAA"}`))
		case "/big":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(make([]byte, maxBodySize+10))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second)

	t.Run("Success", func(t *testing.T) {
		status, body, headers, err := client.Get(context.Background(), srv.URL+"/stock/AAA/quote", http.Header{"Accept": []string{"application/json"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"symbol":"AAA"}`, string(body))
		assert.Equal(t, "test", headers.Get("X-Source"))
	})

	t.Run("Accept defaults to JSON", func(t *testing.T) {
		status, _, _, err := client.Get(context.Background(), srv.URL+"/stock/AAA/quote", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("Caller headers are not mutated", func(t *testing.T) {
		headers := http.Header{"X-Trace": []string{"1"}}
		_, _, _, err := client.Get(context.Background(), srv.URL+"/missing", headers)
		require.NoError(t, err)
		assert.Empty(t, headers.Get("Accept"))
	})

	t.Run("Body too large", func(t *testing.T) {
		_, body, _, err := client.Get(context.Background(), srv.URL+"/big", nil)
		assert.ErrorIs(t, err, ErrBodyTooLarge)
		assert.Nil(t, body)
	})

	t.Run("Not found", func(t *testing.T) {
		status, _, _, err := client.Get(context.Background(), srv.URL+"/missing", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, _, _, err := client.Get(ctx, srv.URL+"/slow", nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Bad URL", func(t *testing.T) {
		_, _, _, err := client.Get(context.Background(), "://bad", nil)
		assert.Error(t, err)
	})
}

func TestHTTPClient_SetClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockHTTPClientI(ctrl)

	client := NewHTTPClient(0)
	client.SetClient(mock)

	mock.EXPECT().Get(gomock.Any(), "http://quotes/x", gomock.Nil()).Return(0, nil, nil, errors.New("dial tcp"))
	_, _, _, err := client.Get(context.Background(), "http://quotes/x", nil)
	assert.EqualError(t, err, "dial tcp")

	req, _ := http.NewRequest(http.MethodGet, "http://quotes/y", nil)
	mock.EXPECT().Do(req).Return(&http.Response{StatusCode: http.StatusTeapot}, nil)
	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
