package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"releaf-service/config"
	"releaf-service/internal/auth"
	"releaf-service/internal/models"
	"releaf-service/internal/service"
	"releaf-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser   = "11111111-1111-1111-1111-111111111111"
	testReward = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func setupRedeemRouter(t *testing.T) (*gin.Engine, *store.Memory, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	mem.PutBalance(testUser, 500)
	mem.PutReward(models.Reward{
		ID:             testReward,
		Name:           "Bamboo Mug",
		Description:    "Reusable bamboo travel mug",
		PointsRequired: 100,
		Quantity:       3,
		IsActive:       true,
	})

	tokens := auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	pair, err := tokens.GenerateTokenPair(testUser, "alice@example.com")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Uploads.Dir = t.TempDir()
	cfg.Limits.Disabled = true

	redemptionService := service.NewRedemptionService(mem, nil, nil, 100, 50)
	handler := NewHandler(nil, nil, nil, nil, redemptionService, tokens, nil, cfg)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, mem, pair.AccessToken
}

func postRedeem(router *gin.Engine, token string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/rewards/redeem", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRedeemEndpointSuccess(t *testing.T) {
	router, mem, token := setupRedeemRouter(t)

	rec := postRedeem(router, token, gin.H{
		"items": []gin.H{{"reward_id": testReward, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		RedemptionIDs    []string `json:"redemption_ids"`
		TotalPointsSpent int64    `json:"total_points_spent"`
		RemainingCredits int64    `json:"remaining_credits"`
		OrderStatus      string   `json:"order_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.RedemptionIDs, 1)
	assert.Equal(t, int64(200), resp.TotalPointsSpent)
	assert.Equal(t, int64(300), resp.RemainingCredits)
	assert.Equal(t, "processing", resp.OrderStatus)

	assert.Equal(t, int64(300), mem.Balance(testUser))
	assert.Equal(t, 1, mem.RewardQuantity(testReward))
}

func TestRedeemEndpointRequiresAuth(t *testing.T) {
	router, mem, _ := setupRedeemRouter(t)

	rec := postRedeem(router, "", gin.H{
		"items": []gin.H{{"reward_id": testReward, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, int64(500), mem.Balance(testUser))
}

func TestRedeemEndpointBadPayload(t *testing.T) {
	router, _, token := setupRedeemRouter(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"empty cart", gin.H{"items": []gin.H{}}},
		{"zero quantity", gin.H{"items": []gin.H{{"reward_id": testReward, "quantity": 0}}}},
		{"quantity above cap", gin.H{"items": []gin.H{{"reward_id": testReward, "quantity": 101}}}},
		{"non uuid reward id", gin.H{"items": []gin.H{{"reward_id": "nope", "quantity": 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRedeem(router, token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation", resp["error"])
		})
	}
}

func TestRedeemEndpointInsufficientCredits(t *testing.T) {
	router, mem, token := setupRedeemRouter(t)
	mem.PutBalance(testUser, 50)

	rec := postRedeem(router, token, gin.H{
		"items": []gin.H{{"reward_id": testReward, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_funds", resp["error"])
	assert.Equal(t, int64(50), mem.Balance(testUser))
}

func TestRedeemEndpointOutOfStock(t *testing.T) {
	router, mem, token := setupRedeemRouter(t)

	rec := postRedeem(router, token, gin.H{
		"items": []gin.H{{"reward_id": testReward, "quantity": 4}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "out_of_stock", resp["error"])
	assert.Equal(t, "not enough stock for Bamboo Mug. Available: 3", resp["message"])
	assert.Equal(t, 3, mem.RewardQuantity(testReward))
}

func TestRedeemEndpointUnknownReward(t *testing.T) {
	router, _, token := setupRedeemRouter(t)

	rec := postRedeem(router, token, gin.H{
		"items": []gin.H{{"reward_id": "cccccccc-cccc-cccc-cccc-cccccccccccc", "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reward_not_found", resp["error"])
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupRedeemRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
