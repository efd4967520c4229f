package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mixshare/internal/middleware"
	"mixshare/internal/service"
	"mixshare/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CocktailHandler struct {
	cocktailService service.CocktailService
}

func NewCocktailHandler(cocktailService service.CocktailService) *CocktailHandler {
	return &CocktailHandler{cocktailService: cocktailService}
}

// List handles GET /api/v1/cocktails
func (h *CocktailHandler) List(c *gin.Context) {
	params := service.ListParams{
		Page:           queryInt(c, "page", 1),
		Limit:          queryInt(c, "limit", 10),
		Category:       c.Query("category"),
		AlcoholContent: c.Query("alcoholContent"),
		CreatedBy:      c.Query("createdBy"),
		Search:         c.Query("search"),
		SortBy:         c.Query("sortBy"),
		Fields:         c.Query("fields"),
	}

	result, err := h.cocktailService.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	util.Paginated(c, result.Page, result.Limit, result.Total, result.Items, len(result.Items))
}

// Get handles GET /api/v1/cocktails/:id
func (h *CocktailHandler) Get(c *gin.Context) {
	var viewerID *primitive.ObjectID
	if id, ok := middleware.UserID(c); ok {
		viewerID = &id
	}

	detail, err := h.cocktailService.GetDetail(c.Request.Context(), c.Param("id"), viewerID, middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Cocktail retrieved", gin.H{
		"cocktail": detail.Cocktail,
		"comments": detail.Comments,
		"likes":    detail.Likes,
		"ratings":  detail.Ratings,
	})
}

// Create handles POST /api/v1/cocktails. The request is multipart: a
// "data" field carrying the JSON payload and an optional "image" file.
func (h *CocktailHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	data := c.PostForm("data")
	if data == "" {
		util.BadRequest(c, "Missing data field")
		return
	}

	var req service.CreateCocktailRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		util.BadRequest(c, "Invalid data payload")
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}

	cocktail, err := h.cocktailService.Create(c.Request.Context(), userID, req, image)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Cocktail submitted for review", cocktail)
}

// Update handles PUT /api/v1/cocktails/:id
func (h *CocktailHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	var req service.UpdateCocktailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	cocktail, err := h.cocktailService.Update(c.Request.Context(), c.Param("id"), userID, middleware.IsAdmin(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Cocktail updated", cocktail)
}

// Delete handles DELETE /api/v1/cocktails/:id
func (h *CocktailHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.cocktailService.Delete(c.Request.Context(), c.Param("id"), userID, middleware.IsAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Cocktail deleted", nil)
}

// Mine handles GET /api/v1/cocktails/mine
func (h *CocktailHandler) Mine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		util.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.cocktailService.MyCocktails(c.Request.Context(), userID, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	util.Paginated(c, result.Page, result.Limit, result.Total, result.Items, len(result.Items))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
