package api

import (
	"net/http"

	"releaf-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var input service.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"error":   "validation",
			"details": err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), principalID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) followUser(c *gin.Context) {
	if err := h.userService.FollowUser(c.Request.Context(), principalID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Now following user"})
}

func (h *Handler) unfollowUser(c *gin.Context) {
	if err := h.userService.UnfollowUser(c.Request.Context(), principalID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed user"})
}

func (h *Handler) listFollowers(c *gin.Context) {
	limit, offset := pagination(c)
	followers, err := h.userService.Followers(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"total":     len(followers),
	})
}

func (h *Handler) listFollowing(c *gin.Context) {
	limit, offset := pagination(c)
	following, err := h.userService.Following(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"total":     len(following),
	})
}

func (h *Handler) listUserPosts(c *gin.Context) {
	limit, offset := pagination(c)
	posts, err := h.userService.UserPosts(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

func (h *Handler) listFollowedTags(c *gin.Context) {
	tags, err := h.userService.FollowedTags(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *Handler) followTag(c *gin.Context) {
	var req struct {
		Tag string `json:"tag" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Tag is required",
			"error":   "validation",
		})
		return
	}

	if err := h.userService.FollowTag(c.Request.Context(), principalID(c), req.Tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Now following tag"})
}

func (h *Handler) unfollowTag(c *gin.Context) {
	var req struct {
		Tag string `json:"tag" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Tag is required",
			"error":   "validation",
		})
		return
	}

	if err := h.userService.UnfollowTag(c.Request.Context(), principalID(c), req.Tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed tag"})
}
