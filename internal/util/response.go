package util

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// PageInfo carries the pagination flags of a listing response.
type PageInfo struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// PaginatedResponse is the listing envelope: count is the page size
// actually returned, total the pre-pagination match count.
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Pages      int         `json:"pages"`
	Pagination PageInfo    `json:"pagination"`
	Data       interface{} `json:"data"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string, detail interface{}) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message, nil)
}

func Conflict(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, message, nil)
}

// Paginated writes the listing envelope. pages is ceil(total/limit);
// hasNext/hasPrev derive from page*limit against total.
func Paginated(c *gin.Context, page, limit int, total int64, data interface{}, count int) {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Count:   count,
		Total:   total,
		Page:    page,
		Pages:   pages,
		Pagination: PageInfo{
			Current: page,
			Total:   pages,
			HasNext: int64(page*limit) < total,
			HasPrev: page > 1,
		},
		Data: data,
	})
}
