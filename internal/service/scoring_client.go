package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"releaf-service/internal/models"
	"releaf-service/internal/util"

	"go.uber.org/zap"
)

// ScoringClient calls the external post-scoring collaborator. The
// collaborator may be unavailable; callers always get a usable point value
// because any failure falls back to the configured fixed award.
type ScoringClient struct {
	baseURL        string
	httpClient     *http.Client
	fallbackPoints int64
	logger         *zap.Logger
}

// NewScoringClient creates a scoring client
func NewScoringClient(baseURL string, timeout time.Duration, fallbackPoints int64) *ScoringClient {
	return &ScoringClient{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: timeout},
		fallbackPoints: fallbackPoints,
		logger:         util.GetLogger(),
	}
}

type scoreRequest struct {
	PostID      string   `json:"post_id"`
	UserID      string   `json:"user_id"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
}

type scoreResponse struct {
	Points   *int64 `json:"points"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason"`
}

// ScoreResult is the outcome of scoring one post
type ScoreResult struct {
	Points   int64
	Fallback bool
}

// ScorePost asks the collaborator for a point value. Never returns an
// error: unavailability, timeouts, and malformed responses all resolve to
// the fallback award.
func (c *ScoringClient) ScorePost(ctx context.Context, post *models.Post) ScoreResult {
	ctx, span := util.StartSpan(ctx, "ScoringClient.ScorePost")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ScoringLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(scoreRequest{
		PostID:      post.ID,
		UserID:      post.UserID,
		Tags:        post.Tags,
		Description: post.Description,
		ImageURL:    post.ImageURL,
	})
	if err != nil {
		return c.fallback(post.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reward/", bytes.NewReader(body))
	if err != nil {
		return c.fallback(post.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fallback(post.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fallback(post.ID, fmt.Errorf("scoring service returned status %d", resp.StatusCode))
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c.fallback(post.ID, err)
	}
	if parsed.Points == nil || *parsed.Points < 0 {
		return c.fallback(post.ID, fmt.Errorf("scoring service returned no point value"))
	}

	return ScoreResult{Points: *parsed.Points, Fallback: parsed.Fallback}
}

func (c *ScoringClient) fallback(postID string, reason error) ScoreResult {
	util.ScoringFallbackTotal.Inc()
	c.logger.Warn("Scoring unavailable, applying fallback points",
		zap.String("post_id", postID),
		zap.Int64("fallback_points", c.fallbackPoints),
		zap.Error(reason))
	return ScoreResult{Points: c.fallbackPoints, Fallback: true}
}
