package app

import (
	"net/http"

	"mixshare/internal/service"
	"mixshare/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// PendingCocktails handles GET /api/v1/admin/cocktails/pending
func (h *AdminHandler) PendingCocktails(c *gin.Context) {
	result, err := h.adminService.PendingCocktails(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	util.Paginated(c, result.Page, result.Limit, result.Total, result.Items, len(result.Items))
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

// SetApproval handles PUT /api/v1/admin/cocktails/:id/approval
func (h *AdminHandler) SetApproval(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	cocktail, err := h.adminService.SetApproval(c.Request.Context(), c.Param("id"), req.Approved)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Cocktail rejected"
	if req.Approved {
		message = "Cocktail approved"
	}
	util.SuccessResponse(c, http.StatusOK, message, cocktail)
}

type featuredRequest struct {
	Featured bool `json:"featured"`
}

// SetFeatured handles PUT /api/v1/admin/cocktails/:id/featured
func (h *AdminHandler) SetFeatured(c *gin.Context) {
	var req featuredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	cocktail, err := h.adminService.SetFeatured(c.Request.Context(), c.Param("id"), req.Featured)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Cocktail updated", cocktail)
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	users, total, err := h.adminService.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.Paginated(c, page, limit, total, users, len(users))
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// SetBanned handles PUT /api/v1/admin/users/:id/ban
func (h *AdminHandler) SetBanned(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := h.adminService.SetBanned(c.Request.Context(), c.Param("id"), req.Banned); err != nil {
		respondError(c, err)
		return
	}

	message := "User unbanned"
	if req.Banned {
		message = "User banned"
	}
	util.SuccessResponse(c, http.StatusOK, message, nil)
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Stats retrieved", stats)
}
