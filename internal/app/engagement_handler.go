package app

import (
	"net/http"

	"mixshare/internal/middleware"
	"mixshare/internal/service"
	"mixshare/internal/util"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagementService service.EngagementService
}

func NewEngagementHandler(engagementService service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// Like handles POST /api/v1/cocktails/:id/like
func (h *EngagementHandler) Like(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.engagementService.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Cocktail unliked"
	if result.Liked {
		message = "Cocktail liked"
	}
	util.SuccessResponse(c, http.StatusOK, message, result)
}

// Rate handles POST /api/v1/cocktails/:id/rate
func (h *EngagementHandler) Rate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	var req service.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	result, err := h.engagementService.Rate(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Rating saved", result)
}

// Comment handles POST /api/v1/cocktails/:id/comments
func (h *EngagementHandler) Comment(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	comment, err := h.engagementService.Comment(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Comment added", comment)
}
