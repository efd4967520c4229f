package repository

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort keys accepted by the listing endpoint.
const (
	SortByViews  = "views"
	SortByRating = "rating"
	SortByLikes  = "likes"
)

// ListQuery is the single descriptor both listing execution paths are
// built from, so filter, window and projection construction cannot
// drift apart.
type ListQuery struct {
	Page           int
	Limit          int
	Category       string
	AlcoholContent string
	CreatedBy      string
	Search         string
	SortBy         string
	Fields         []string
}

// Skip returns the offset window start for the query.
func (q ListQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// NeedsAggregation reports whether the requested sort key is computed
// from the embedded arrays rather than stored on the document.
func (q ListQuery) NeedsAggregation() bool {
	return q.SortBy == SortByRating || q.SortBy == SortByLikes
}

// computedSortField maps a computed sort key to the document field the
// pipeline writes it to.
func (q ListQuery) computedSortField() string {
	switch q.SortBy {
	case SortByRating:
		return "averageRating"
	case SortByLikes:
		return "likesCount"
	}
	return ""
}

// buildListFilter translates the query into a store predicate. Only
// approved cocktails are ever matched; the flag is injected here and
// cannot be overridden by any caller input. All filters AND together.
func buildListFilter(q ListQuery) bson.M {
	filter := bson.M{"isApproved": true}

	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.AlcoholContent != "" {
		filter["alcoholContent"] = q.AlcoholContent
	}
	if q.CreatedBy != "" {
		if oid, err := primitive.ObjectIDFromHex(q.CreatedBy); err == nil {
			filter["createdBy"] = oid
		} else {
			// Malformed creator id can never match anything
			filter["createdBy"] = primitive.NilObjectID
		}
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}

	return filter
}

// buildSimpleSort picks the stored-field ordering for the find path:
// views descending when requested, otherwise newest first.
func buildSimpleSort(q ListQuery) bson.D {
	if q.SortBy == SortByViews {
		return bson.D{{Key: "views", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}

// buildProjection builds the sparse-fieldset projection. The identity,
// the creator reference (needed for expansion) and the active computed
// sort field are always retained so the value the client sorts by is
// never silently dropped. Returns nil when no restriction applies.
func buildProjection(q ListQuery) bson.M {
	if len(q.Fields) == 0 {
		return nil
	}

	projection := bson.M{"_id": 1, "createdBy": 1}
	for _, f := range q.Fields {
		f = strings.TrimSpace(f)
		if f != "" {
			projection[f] = 1
		}
	}
	if cf := q.computedSortField(); cf != "" {
		projection[cf] = 1
	}
	return projection
}

// buildListPipeline assembles the aggregation path: filter, transient
// recompute of the rating/like aggregates from the raw embedded arrays,
// computed-field sort with recency tie-break, then the same window and
// projection the find path applies.
func buildListPipeline(q ListQuery) []bson.M {
	pipeline := []bson.M{
		{"$match": buildListFilter(q)},
		{"$addFields": bson.M{
			"averageRating": bson.M{
				"$round": bson.A{
					bson.M{"$cond": bson.A{
						bson.M{"$gt": bson.A{bson.M{"$size": bson.M{"$ifNull": bson.A{"$ratings", bson.A{}}}}, 0}},
						bson.M{"$avg": "$ratings.rating"},
						0,
					}},
					1,
				},
			},
			"likesCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
		}},
		{"$sort": bson.D{
			{Key: q.computedSortField(), Value: -1},
			{Key: "createdAt", Value: -1},
		}},
		{"$skip": q.Skip()},
		{"$limit": int64(q.Limit)},
	}

	if projection := buildProjection(q); projection != nil {
		pipeline = append(pipeline, bson.M{"$project": projection})
	}

	return pipeline
}
