package api

import (
	"net/http"

	"releaf-service/internal/service"

	"github.com/gin-gonic/gin"
)

// listRewards returns all active rewards ordered by ascending cost
func (h *Handler) listRewards(c *gin.Context) {
	rewards, err := h.rewardService.ListRewards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// getReward returns a single reward
func (h *Handler) getReward(c *gin.Context) {
	reward, err := h.rewardService.GetReward(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// redeem converts the submitted cart into one atomic redemption
func (h *Handler) redeem(c *gin.Context) {
	var req service.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"error":   "validation",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.redemptionService.Redeem(c.Request.Context(), principalID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":            "Redemption successful",
		"redemption_ids":     resp.RedemptionIDs,
		"items_redeemed":     resp.ItemsRedeemed,
		"total_points_spent": resp.TotalPointsSpent,
		"remaining_credits":  resp.RemainingCredits,
		"order_status":       resp.OrderStatus,
	})
}

// redemptionHistory returns the caller's past redemptions
func (h *Handler) redemptionHistory(c *gin.Context) {
	limit, offset := pagination(c)
	redemptions, err := h.rewardService.RedemptionHistory(c.Request.Context(), principalID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"redemptions": redemptions,
		"total":       len(redemptions),
	})
}
