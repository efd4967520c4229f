package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mixshare/internal/db"
	"mixshare/internal/model"
	"mixshare/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CocktailRepository interface {
	Create(ctx context.Context, cocktail *model.Cocktail) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Cocktail, error)
	List(ctx context.Context, q ListQuery) ([]*model.Cocktail, int64, error)
	FindByCreator(ctx context.Context, creator primitive.ObjectID, limit, offset int) ([]*model.Cocktail, int64, error)
	FindPending(ctx context.Context, limit, offset int) ([]*model.Cocktail, int64, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCreator(ctx context.Context, creator primitive.ObjectID) (int64, error)
	Count(ctx context.Context, approvedOnly bool) (int64, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error

	ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (liked bool, err error)
	UpsertRating(ctx context.Context, id, userID primitive.ObjectID, rating int) error
	AppendComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error

	ExpandCreators(ctx context.Context, cocktails []*model.Cocktail) error
}

type cocktailRepository struct {
	cocktails *mongo.Collection
	userRepo  UserRepository
	redis     *util.RedisClient
}

const (
	cocktailCachePrefix     = "cocktail:"
	cocktailListCachePrefix = "cocktail:list:"
	cocktailCacheExpiration = 15 * time.Minute
)

func NewCocktailRepository(store *db.Mongo, userRepo UserRepository, redis *util.RedisClient) CocktailRepository {
	return &cocktailRepository{
		cocktails: store.Collection(db.CocktailsCollection),
		userRepo:  userRepo,
		redis:     redis,
	}
}

// Create inserts a new cocktail and invalidates the listing cache.
func (r *cocktailRepository) Create(ctx context.Context, cocktail *model.Cocktail) error {
	now := time.Now()
	cocktail.CreatedAt = now
	cocktail.UpdatedAt = now
	if cocktail.Likes == nil {
		cocktail.Likes = []model.Like{}
	}
	if cocktail.Ratings == nil {
		cocktail.Ratings = []model.Rating{}
	}
	if cocktail.Comments == nil {
		cocktail.Comments = []model.Comment{}
	}

	res, err := r.cocktails.InsertOne(ctx, cocktail)
	if err != nil {
		return translateError(err)
	}
	cocktail.ID = res.InsertedID.(primitive.ObjectID)

	r.invalidateListCache()
	return nil
}

// FindByID finds a cocktail by ID, checking cache first.
func (r *cocktailRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Cocktail, error) {
	if r.redis != nil {
		if cached, err := r.redis.Get(cocktailCachePrefix + id.Hex()); err == nil {
			var cocktail model.Cocktail
			if err := json.Unmarshal([]byte(cached), &cocktail); err == nil {
				return &cocktail, nil
			}
		}
	}

	var cocktail model.Cocktail
	err := r.cocktails.FindOne(ctx, bson.M{"_id": id}).Decode(&cocktail)
	if err != nil {
		return nil, translateError(err)
	}

	r.cacheCocktail(&cocktail)
	return &cocktail, nil
}

// List runs the listing descriptor. Both execution paths share the
// filter, window and projection builders and the creator expansion, so
// their responses stay shape-identical; only the sort execution
// differs. Results are cached per descriptor with a short TTL.
func (r *cocktailRepository) List(ctx context.Context, q ListQuery) ([]*model.Cocktail, int64, error) {
	cacheKey := listCacheKey(q)
	if r.redis != nil {
		if cached, err := r.redis.Get(cacheKey); err == nil {
			var result cachedList
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result.Items, result.Total, nil
			}
		}
	}

	filter := buildListFilter(q)
	total, err := r.cocktails.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateError(err)
	}

	var cocktails []*model.Cocktail
	if q.NeedsAggregation() {
		cocktails, err = r.listAggregate(ctx, q)
	} else {
		cocktails, err = r.listFind(ctx, q, filter)
	}
	if err != nil {
		return nil, 0, err
	}

	if err := r.ExpandCreators(ctx, cocktails); err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(cachedList{Items: cocktails, Total: total}); err == nil {
			_ = r.redis.Set(cacheKey, string(data), cocktailCacheExpiration)
		}
	}

	return cocktails, total, nil
}

// listFind is the stored-field path: plain query, stored sort key.
func (r *cocktailRepository) listFind(ctx context.Context, q ListQuery, filter bson.M) ([]*model.Cocktail, error) {
	opts := options.Find().
		SetSort(buildSimpleSort(q)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	if projection := buildProjection(q); projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := r.cocktails.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var cocktails []*model.Cocktail
	if err := cursor.All(ctx, &cocktails); err != nil {
		return nil, translateError(err)
	}
	return cocktails, nil
}

// listAggregate is the computed-field path: the pipeline recomputes the
// rating/like aggregates from the raw embedded arrays and sorts on the
// result.
func (r *cocktailRepository) listAggregate(ctx context.Context, q ListQuery) ([]*model.Cocktail, error) {
	cursor, err := r.cocktails.Aggregate(ctx, buildListPipeline(q))
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var cocktails []*model.Cocktail
	if err := cursor.All(ctx, &cocktails); err != nil {
		return nil, translateError(err)
	}
	return cocktails, nil
}

// ExpandCreators attaches the public creator record to each cocktail in
// one users round trip. The aggregation path cannot resolve references
// inside the pipeline, so both paths run through here to keep the
// response shape identical.
func (r *cocktailRepository) ExpandCreators(ctx context.Context, cocktails []*model.Cocktail) error {
	if len(cocktails) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0, len(cocktails))
	for _, c := range cocktails {
		if !c.CreatedBy.IsZero() && !seen[c.CreatedBy] {
			seen[c.CreatedBy] = true
			ids = append(ids, c.CreatedBy)
		}
	}

	creators, err := r.userRepo.FindPublicByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range cocktails {
		c.Creator = creators[c.CreatedBy]
	}
	return nil
}

// FindByCreator lists a user's cocktails (their own view, approved or
// not), newest first.
func (r *cocktailRepository) FindByCreator(ctx context.Context, creator primitive.ObjectID, limit, offset int) ([]*model.Cocktail, int64, error) {
	return r.findPaged(ctx, bson.M{"createdBy": creator}, limit, offset)
}

// FindPending lists cocktails awaiting moderation, oldest first.
func (r *cocktailRepository) FindPending(ctx context.Context, limit, offset int) ([]*model.Cocktail, int64, error) {
	filter := bson.M{"isApproved": false}
	total, err := r.cocktails.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.cocktails.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer cursor.Close(ctx)

	var cocktails []*model.Cocktail
	if err := cursor.All(ctx, &cocktails); err != nil {
		return nil, 0, translateError(err)
	}
	return cocktails, total, nil
}

func (r *cocktailRepository) findPaged(ctx context.Context, filter bson.M, limit, offset int) ([]*model.Cocktail, int64, error) {
	total, err := r.cocktails.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.cocktails.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer cursor.Close(ctx)

	var cocktails []*model.Cocktail
	if err := cursor.All(ctx, &cocktails); err != nil {
		return nil, 0, translateError(err)
	}
	return cocktails, total, nil
}

// UpdateFields applies a partial update and refreshes caches.
func (r *cocktailRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.cocktails.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	r.invalidateCocktailCache(id)
	return nil
}

func (r *cocktailRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.cocktails.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	r.invalidateCocktailCache(id)
	return nil
}

func (r *cocktailRepository) CountByCreator(ctx context.Context, creator primitive.ObjectID) (int64, error) {
	count, err := r.cocktails.CountDocuments(ctx, bson.M{"createdBy": creator})
	return count, translateError(err)
}

func (r *cocktailRepository) Count(ctx context.Context, approvedOnly bool) (int64, error) {
	filter := bson.M{}
	if approvedOnly {
		filter["isApproved"] = true
	}
	count, err := r.cocktails.CountDocuments(ctx, filter)
	return count, translateError(err)
}

// IncrementViews bumps the view counter. Only the detail cache is
// dropped here: this fires on every detail fetch, and clearing the
// listing pages each time would empty the list cache continuously.
// Views-sorted pages catch up within the cache TTL.
func (r *cocktailRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.cocktails.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return translateError(err)
	}
	if r.redis != nil {
		_ = r.redis.Delete(cocktailCachePrefix + id.Hex())
	}
	return nil
}

// ToggleLike removes the user's like entry if present, otherwise
// appends one. Both legs are single targeted updates, so two racing
// toggles cannot clobber each other's writes, and the push leg's
// predicate keeps the per-user cardinality at one.
func (r *cocktailRepository) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	res, err := r.cocktails.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}},
	)
	if err != nil {
		return false, translateError(err)
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}

	liked := false
	if res.ModifiedCount == 0 {
		// Nothing removed: the user had no like entry, add one
		_, err = r.cocktails.UpdateOne(ctx,
			bson.M{"_id": id, "likes.user": bson.M{"$ne": userID}},
			bson.M{"$push": bson.M{"likes": model.Like{User: userID, CreatedAt: time.Now()}}},
		)
		if err != nil {
			return false, translateError(err)
		}
		liked = true
	}

	if err := r.recomputeAggregates(ctx, id); err != nil {
		return false, err
	}
	return liked, nil
}

// UpsertRating overwrites the user's rating entry in place, or appends
// one when absent.
func (r *cocktailRepository) UpsertRating(ctx context.Context, id, userID primitive.ObjectID, rating int) error {
	now := time.Now()
	res, err := r.cocktails.UpdateOne(ctx,
		bson.M{"_id": id, "ratings.user": userID},
		bson.M{"$set": bson.M{"ratings.$.rating": rating, "ratings.$.createdAt": now}},
	)
	if err != nil {
		return translateError(err)
	}

	if res.MatchedCount == 0 {
		res, err = r.cocktails.UpdateOne(ctx,
			bson.M{"_id": id, "ratings.user": bson.M{"$ne": userID}},
			bson.M{"$push": bson.M{"ratings": model.Rating{User: userID, Rating: rating, CreatedAt: now}}},
		)
		if err != nil {
			return translateError(err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
	}

	return r.recomputeAggregates(ctx, id)
}

// AppendComment appends unconditionally; comments have no edit or
// delete path.
func (r *cocktailRepository) AppendComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = time.Now()

	res, err := r.cocktails.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	r.invalidateCocktailCache(id)
	return nil
}

// recomputeAggregates refreshes the denormalized rating/like aggregates
// server-side in a single pipeline update, from whatever the arrays
// hold at that moment.
func (r *cocktailRepository) recomputeAggregates(ctx context.Context, id primitive.ObjectID) error {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
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
			"updatedAt":  "$$NOW",
		}},
	}

	_, err := r.cocktails.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return translateError(err)
	}

	r.invalidateCocktailCache(id)
	return nil
}

// Cache helpers

type cachedList struct {
	Items []*model.Cocktail `json:"items"`
	Total int64             `json:"total"`
}

func listCacheKey(q ListQuery) string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s:%s:%s:%s",
		cocktailListCachePrefix, q.Page, q.Limit,
		q.Category, q.AlcoholContent, q.CreatedBy, q.Search, q.SortBy,
		joinFields(q.Fields))
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}

func (r *cocktailRepository) cacheCocktail(cocktail *model.Cocktail) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(cocktail)
	if err != nil {
		return
	}
	_ = r.redis.Set(cocktailCachePrefix+cocktail.ID.Hex(), string(data), cocktailCacheExpiration)
}

func (r *cocktailRepository) invalidateCocktailCache(id primitive.ObjectID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Delete(cocktailCachePrefix + id.Hex())
	r.invalidateListCache()
}

func (r *cocktailRepository) invalidateListCache() {
	if r.redis == nil {
		return
	}
	_ = r.redis.DeletePattern(cocktailListCachePrefix + "*")
}
