package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListQuerySkip(t *testing.T) {
	assert.Equal(t, int64(0), ListQuery{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(10), ListQuery{Page: 2, Limit: 10}.Skip())
	assert.Equal(t, int64(50), ListQuery{Page: 3, Limit: 25}.Skip())
}

func TestNeedsAggregation(t *testing.T) {
	assert.False(t, ListQuery{}.NeedsAggregation())
	assert.False(t, ListQuery{SortBy: SortByViews}.NeedsAggregation())
	assert.True(t, ListQuery{SortBy: SortByRating}.NeedsAggregation())
	assert.True(t, ListQuery{SortBy: SortByLikes}.NeedsAggregation())
}

func TestBuildListFilterAlwaysRequiresApproval(t *testing.T) {
	filter := buildListFilter(ListQuery{})
	assert.Equal(t, bson.M{"isApproved": true}, filter)

	// Filters combine, approval stays pinned
	filter = buildListFilter(ListQuery{Category: "tropical", AlcoholContent: "strong"})
	assert.Equal(t, true, filter["isApproved"])
	assert.Equal(t, "tropical", filter["category"])
	assert.Equal(t, "strong", filter["alcoholContent"])
}

func TestBuildListFilterCreatedBy(t *testing.T) {
	oid := primitive.NewObjectID()
	filter := buildListFilter(ListQuery{CreatedBy: oid.Hex()})
	assert.Equal(t, oid, filter["createdBy"])

	// A malformed id must not be dropped, it must match nothing
	filter = buildListFilter(ListQuery{CreatedBy: "not-a-hex-id"})
	assert.Equal(t, primitive.NilObjectID, filter["createdBy"])
}

func TestBuildListFilterSearch(t *testing.T) {
	filter := buildListFilter(ListQuery{Search: "negroni"})
	assert.Equal(t, bson.M{"$search": "negroni"}, filter["$text"])
}

func TestBuildSimpleSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, buildSimpleSort(ListQuery{}))
	assert.Equal(t, bson.D{{Key: "views", Value: -1}}, buildSimpleSort(ListQuery{SortBy: SortByViews}))
}

func TestBuildProjection(t *testing.T) {
	assert.Nil(t, buildProjection(ListQuery{}))

	p := buildProjection(ListQuery{Fields: []string{"name", "image"}})
	assert.Equal(t, 1, p["name"])
	assert.Equal(t, 1, p["image"])
	// Identity and creator reference always survive
	assert.Equal(t, 1, p["_id"])
	assert.Equal(t, 1, p["createdBy"])
}

func TestBuildProjectionKeepsComputedSortField(t *testing.T) {
	p := buildProjection(ListQuery{Fields: []string{"name"}, SortBy: SortByRating})
	assert.Equal(t, 1, p["averageRating"])

	p = buildProjection(ListQuery{Fields: []string{"name"}, SortBy: SortByLikes})
	assert.Equal(t, 1, p["likesCount"])
}

func TestBuildListPipelineStages(t *testing.T) {
	q := ListQuery{Page: 2, Limit: 5, SortBy: SortByRating, Category: "classics"}
	pipeline := buildListPipeline(q)
	require.Len(t, pipeline, 5)

	match, ok := pipeline[0]["$match"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, true, match["isApproved"])
	assert.Equal(t, "classics", match["category"])

	fields, ok := pipeline[1]["$addFields"].(bson.M)
	require.True(t, ok)
	assert.Contains(t, fields, "averageRating")
	assert.Contains(t, fields, "likesCount")

	sort, ok := pipeline[2]["$sort"].(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 2)
	assert.Equal(t, "averageRating", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
	assert.Equal(t, "createdAt", sort[1].Key)

	assert.Equal(t, int64(5), pipeline[3]["$skip"])
	assert.Equal(t, int64(5), pipeline[4]["$limit"])
}

func TestBuildListPipelineSortsByLikes(t *testing.T) {
	pipeline := buildListPipeline(ListQuery{Page: 1, Limit: 10, SortBy: SortByLikes})
	sort := pipeline[2]["$sort"].(bson.D)
	assert.Equal(t, "likesCount", sort[0].Key)
}

func TestBuildListPipelineAppendsProjection(t *testing.T) {
	q := ListQuery{Page: 1, Limit: 10, SortBy: SortByLikes, Fields: []string{"name"}}
	pipeline := buildListPipeline(q)
	require.Len(t, pipeline, 6)

	project, ok := pipeline[5]["$project"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 1, project["name"])
	assert.Equal(t, 1, project["likesCount"])
}

func TestListCacheKeyDistinguishesQueries(t *testing.T) {
	a := listCacheKey(ListQuery{Page: 1, Limit: 10, Category: "tropical"})
	b := listCacheKey(ListQuery{Page: 2, Limit: 10, Category: "tropical"})
	c := listCacheKey(ListQuery{Page: 1, Limit: 10, Category: "winter"})
	d := listCacheKey(ListQuery{Page: 1, Limit: 10, Category: "tropical", Fields: []string{"name"}})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
