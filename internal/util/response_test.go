package util

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func recordPaginated(t *testing.T, page, limit int, total int64, count int) PaginatedResponse {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(c, page, limit, total, []string{}, count)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPaginatedPageMath(t *testing.T) {
	resp := recordPaginated(t, 1, 10, 25, 10)
	assert.Equal(t, 3, resp.Pages)
	assert.True(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)

	resp = recordPaginated(t, 3, 10, 25, 5)
	assert.False(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
	assert.Equal(t, 3, resp.Pagination.Current)
}

func TestPaginatedExactBoundary(t *testing.T) {
	// 20 results, 10 per page: page 2 is the last page
	resp := recordPaginated(t, 2, 10, 20, 10)
	assert.Equal(t, 2, resp.Pages)
	assert.False(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestPaginatedEmptyResult(t *testing.T) {
	resp := recordPaginated(t, 1, 10, 0, 0)
	assert.Equal(t, 0, resp.Pages)
	assert.False(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)
	assert.True(t, resp.Success)
}

func TestErrorResponseEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NotFound(c, "Resource not found")

	assert.Equal(t, 404, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Resource not found", resp.Message)
}
