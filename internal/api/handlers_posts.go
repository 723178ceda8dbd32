package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"releaf-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// createPost accepts a multipart form with an image file, a description,
// and tags (either a JSON array string or repeated form fields), stores
// the image, and hands the rest to the post service.
func (h *Handler) createPost(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Image file is required",
			"error":   "validation",
		})
		return
	}
	if file.Size > h.cfg.Uploads.MaxBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Image must be at most %d bytes", h.cfg.Uploads.MaxBytes),
			"error":   "validation",
		})
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Only image files are allowed",
			"error":   "validation",
		})
		return
	}

	filename := uuid.New().String() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.cfg.Uploads.Dir, filename)); err != nil {
		respondError(c, err)
		return
	}

	post, fallback, err := h.postService.CreatePost(c.Request.Context(), service.CreatePostInput{
		UserID:      principalID(c),
		Description: c.PostForm("description"),
		Tags:        parseTags(c),
		ImageURL:    h.cfg.Server.BaseURL + "/uploads/" + filename,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"post":            post,
		"points_awarded":  post.Points,
		"scoring_partial": fallback,
	})
}

// parseTags reads tags either as a JSON array in a single "tags" field or
// as repeated "tags" form values.
func parseTags(c *gin.Context) []string {
	raw := c.PostForm("tags")
	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return tags
		}
	}
	return c.PostFormArray("tags")
}

// listPosts is the public discover feed, filterable by tags and author
func (h *Handler) listPosts(c *gin.Context) {
	limit, offset := pagination(c)

	var tags []string
	if tag := c.Query("tag"); tag != "" {
		tags = append(tags, tag)
	}
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	posts, err := h.postService.ListPosts(c.Request.Context(), service.PostFilter{
		Tags:     tags,
		Username: c.Query("username"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

// homeFeed returns posts from followed users and followed tags
func (h *Handler) homeFeed(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "userId query parameter is required",
			"error":   "validation",
		})
		return
	}

	limit, offset := pagination(c)
	posts, err := h.postService.HomeFeed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

func (h *Handler) getPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.Request.Context(), principalID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
