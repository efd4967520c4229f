package app

import (
	"net/http"

	"mixshare/internal/middleware"
	"mixshare/internal/service"
	"mixshare/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	userService   service.UserService
	followService service.FollowService
}

func NewUserHandler(userService service.UserService, followService service.FollowService) *UserHandler {
	return &UserHandler{userService: userService, followService: followService}
}

// Profile handles GET /api/v1/users/:username
func (h *UserHandler) Profile(c *gin.Context) {
	var viewerID *primitive.ObjectID
	if id, ok := middleware.UserID(c); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile updated", user)
}

// UpdateAvatar handles PUT /api/v1/users/me/avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		util.BadRequest(c, "Avatar file is required")
		return
	}

	user, err := h.userService.UpdateAvatar(c.Request.Context(), userID, file)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Avatar updated", user)
}

// Search handles GET /api/v1/users?search=...
func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.userService.Search(c.Request.Context(), c.Query("search"), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved", users)
}

// Follow handles POST /api/v1/users/:username/follow
func (h *UserHandler) Follow(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.followService.Toggle(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Unfollowed"
	if result.Following {
		message = "Following"
	}
	util.SuccessResponse(c, http.StatusOK, message, result)
}

// Followers handles GET /api/v1/users/:username/followers
func (h *UserHandler) Followers(c *gin.Context) {
	users, total, err := h.followService.Followers(c.Request.Context(), c.Param("username"), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	util.Paginated(c, queryInt(c, "page", 1), queryInt(c, "limit", 10), total, users, len(users))
}

// Following handles GET /api/v1/users/:username/following
func (h *UserHandler) Following(c *gin.Context) {
	users, total, err := h.followService.Following(c.Request.Context(), c.Param("username"), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	util.Paginated(c, queryInt(c, "page", 1), queryInt(c, "limit", 10), total, users, len(users))
}
