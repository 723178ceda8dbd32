package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"releaf-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPost() *models.Post {
	return &models.Post{
		ID:          "post-1",
		UserID:      "user-1",
		Description: "Planted three oak saplings in the park",
		Tags:        []string{"tree-planting"},
		ImageURL:    "http://localhost/uploads/x.jpg",
	}
}

func TestScorePostSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/reward/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"points": 420, "fallback": false}`))
	}))
	defer srv.Close()

	client := NewScoringClient(srv.URL, 2*time.Second, 200)
	result := client.ScorePost(context.Background(), testPost())

	assert.Equal(t, int64(420), result.Points)
	assert.False(t, result.Fallback)
}

func TestScorePostFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewScoringClient(srv.URL, 2*time.Second, 200)
	result := client.ScorePost(context.Background(), testPost())

	assert.Equal(t, int64(200), result.Points)
	assert.True(t, result.Fallback)
}

func TestScorePostFallbackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewScoringClient(srv.URL, time.Second, 200)
	result := client.ScorePost(context.Background(), testPost())

	assert.Equal(t, int64(200), result.Points)
	assert.True(t, result.Fallback)
}

func TestScorePostFallbackOnMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	client := NewScoringClient(srv.URL, 2*time.Second, 200)
	result := client.ScorePost(context.Background(), testPost())

	assert.Equal(t, int64(200), result.Points)
	assert.True(t, result.Fallback)
}

func TestScorePostFallbackOnTimeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	client := NewScoringClient(srv.URL, 50*time.Millisecond, 200)
	result := client.ScorePost(context.Background(), testPost())

	assert.Equal(t, int64(200), result.Points)
	assert.True(t, result.Fallback)
}
