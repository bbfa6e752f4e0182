package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second)
}

func TestHTTPClient_Login(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "a@b.c", req["email"])

		fmt.Fprint(w, `{"token":"tok-1","user":{"id":"u1","email":"a@b.c","name":"Alice"}}`)
	}))

	token, user, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	require.NotNil(t, user)
	assert.Equal(t, "Alice", user.Name)
}

func TestHTTPClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad credentials"}`, http.StatusUnauthorized)
	}))

	_, _, err := c.Login(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, want: ErrRequestFailed},
		{name: "bad request", status: http.StatusBadRequest, want: ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			err := c.SendCode(context.Background(), "a@b.c")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", time.Second)

	_, err := c.Models(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_Models(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"models":["tutor-small","tutor-large"]}`)
	}))

	got, err := c.Models(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tutor-small", "tutor-large"}, got)
}

func TestHTTPClient_ChatStreaming(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ai/chat", r.URL.Path)

		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "tutor-small", req.Model)
		require.Equal(t, []Message{{Role: RoleUser, Content: "hi"}}, req.Messages)

		flusher := w.(http.Flusher)
		for _, line := range []string{
			`data: {"content":"Hel"}`,
			`data: {"content":"lo"}`,
			`data: [DONE]`,
		} {
			fmt.Fprintln(w, line)
			flusher.Flush()
		}
	}))

	stream, err := c.Chat(context.Background(), "tok-1", "tutor-small", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	defer stream.Close()

	got, err := collect(t, stream)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestHTTPClient_ChatUnauthorizedBodyNotParsed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintln(w, `data: {"content":"should never be parsed"}`)
	}))

	stream, err := c.Chat(context.Background(), "stale", "tutor-small", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, stream)
}

func TestHTTPClient_ChatRequestFailed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model unknown"}`, http.StatusBadRequest)
	}))

	_, err := c.Chat(context.Background(), "tok", "nope", nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "model unknown")
}

func TestHTTPClient_ChatCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `data: {"content":"first"}`)
		flusher.Flush()
		<-release
	}))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := c.Chat(ctx, "tok", "tutor-small", nil)
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", ev.Content)

	cancel()
	_, err = stream.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestHTTPClient_PublicStatsBestEffort(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"students":10,"teachers":2,"classes":3}`)
		}))
		stats, ok := c.PublicStats(context.Background())
		require.True(t, ok)
		assert.Equal(t, 10, stats.Students)
	})

	t.Run("failure yields ok=false", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		stats, ok := c.PublicStats(context.Background())
		assert.False(t, ok)
		assert.Nil(t, stats)
	})
}

func TestHTTPClient_SubmitFeedback(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feedback", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	assert.True(t, c.SubmitFeedback(context.Background(), "tok", "nice charts"))

	bad := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	assert.False(t, bad.SubmitFeedback(context.Background(), "tok", "x"))
}
