package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"mixshare/internal/model"
	"mixshare/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeCocktailRepo is an in-memory CocktailRepository with the same
// update semantics as the store-backed one.
type fakeCocktailRepo struct {
	mu        sync.Mutex
	cocktails map[primitive.ObjectID]*model.Cocktail
	lastQuery repository.ListQuery
}

func newFakeCocktailRepo() *fakeCocktailRepo {
	return &fakeCocktailRepo{cocktails: make(map[primitive.ObjectID]*model.Cocktail)}
}

func (f *fakeCocktailRepo) add(c *model.Cocktail) *model.Cocktail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.cocktails[c.ID] = c
	return c
}

func (f *fakeCocktailRepo) Create(ctx context.Context, c *model.Cocktail) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.add(c)
	return nil
}

func (f *fakeCocktailRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Cocktail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cocktails[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCocktailRepo) List(ctx context.Context, q repository.ListQuery) ([]*model.Cocktail, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q

	var approved []*model.Cocktail
	for _, c := range f.cocktails {
		if c.IsApproved {
			approved = append(approved, c)
		}
	}
	total := int64(len(approved))

	sort.SliceStable(approved, func(i, j int) bool {
		a, b := approved[i], approved[j]
		switch q.SortBy {
		case repository.SortByLikes:
			if len(a.Likes) != len(b.Likes) {
				return len(a.Likes) > len(b.Likes)
			}
		case repository.SortByRating:
			ra, rb := model.AverageOfRatings(a.Ratings), model.AverageOfRatings(b.Ratings)
			if ra != rb {
				return ra > rb
			}
		case repository.SortByViews:
			if a.Views != b.Views {
				return a.Views > b.Views
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	start := int(q.Skip())
	if start > len(approved) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(approved) {
		end = len(approved)
	}
	return approved[start:end], total, nil
}

func (f *fakeCocktailRepo) FindByCreator(ctx context.Context, creator primitive.ObjectID, limit, offset int) ([]*model.Cocktail, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []*model.Cocktail
	for _, c := range f.cocktails {
		if c.CreatedBy == creator {
			mine = append(mine, c)
		}
	}
	return mine, int64(len(mine)), nil
}

func (f *fakeCocktailRepo) FindPending(ctx context.Context, limit, offset int) ([]*model.Cocktail, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []*model.Cocktail
	for _, c := range f.cocktails {
		if !c.IsApproved {
			pending = append(pending, c)
		}
	}
	return pending, int64(len(pending)), nil
}

func (f *fakeCocktailRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cocktails[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "description":
			c.Description = v.(string)
		case "category":
			c.Category = v.(string)
		case "isApproved":
			c.IsApproved = v.(bool)
		case "isFeatured":
			c.IsFeatured = v.(bool)
		}
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCocktailRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cocktails[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.cocktails, id)
	return nil
}

func (f *fakeCocktailRepo) CountByCreator(ctx context.Context, creator primitive.ObjectID) (int64, error) {
	_, total, err := f.FindByCreator(ctx, creator, 0, 0)
	return total, err
}

func (f *fakeCocktailRepo) Count(ctx context.Context, approvedOnly bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.cocktails {
		if !approvedOnly || c.IsApproved {
			n++
		}
	}
	return n, nil
}

func (f *fakeCocktailRepo) views(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cocktails[id]; ok {
		return c.Views
	}
	return 0
}

func (f *fakeCocktailRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cocktails[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Views++
	return nil
}

func (f *fakeCocktailRepo) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cocktails[id]
	if !ok {
		return false, repository.ErrNotFound
	}

	for i, l := range c.Likes {
		if l.User == userID {
			c.Likes = append(c.Likes[:i], c.Likes[i+1:]...)
			c.LikesCount = len(c.Likes)
			return false, nil
		}
	}
	c.Likes = append(c.Likes, model.Like{User: userID, CreatedAt: time.Now()})
	c.LikesCount = len(c.Likes)
	return true, nil
}

func (f *fakeCocktailRepo) UpsertRating(ctx context.Context, id, userID primitive.ObjectID, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cocktails[id]
	if !ok {
		return repository.ErrNotFound
	}

	for i, r := range c.Ratings {
		if r.User == userID {
			c.Ratings[i].Rating = rating
			c.AverageRating = model.AverageOfRatings(c.Ratings)
			return nil
		}
	}
	c.Ratings = append(c.Ratings, model.Rating{User: userID, Rating: rating, CreatedAt: time.Now()})
	c.AverageRating = model.AverageOfRatings(c.Ratings)
	return nil
}

func (f *fakeCocktailRepo) AppendComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cocktails[id]
	if !ok {
		return repository.ErrNotFound
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	c.Comments = append(c.Comments, *comment)
	return nil
}

func (f *fakeCocktailRepo) ExpandCreators(ctx context.Context, cocktails []*model.Cocktail) error {
	return nil
}

// fakeUserRepo covers the lookups the services exercise.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User)}
}

func (f *fakeUserRepo) add(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicateKey
		}
	}
	f.add(u)
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.PublicUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID]*model.PublicUser)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.Public()
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchUsers(ctx context.Context, keyword string, limit, offset int) ([]*model.PublicUser, error) {
	return nil, nil
}

func (f *fakeUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*model.User
	for _, u := range f.users {
		all = append(all, u)
	}
	return all, int64(len(all)), nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "avatar":
			u.Avatar = v.(*model.Image)
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeUserRepo) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsBanned = banned
	return nil
}

// fakeFollowRepo keeps follow edges in a pair-keyed map.
type fakeFollowRepo struct {
	mu    sync.Mutex
	edges map[[2]primitive.ObjectID]bool
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[[2]primitive.ObjectID]bool)}
}

func (f *fakeFollowRepo) Create(ctx context.Context, follower, following primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]primitive.ObjectID{follower, following}
	if f.edges[key] {
		return repository.ErrDuplicateKey
	}
	f.edges[key] = true
	return nil
}

func (f *fakeFollowRepo) Delete(ctx context.Context, follower, following primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]primitive.ObjectID{follower, following}
	if !f.edges[key] {
		return repository.ErrNotFound
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeFollowRepo) Exists(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edges[[2]primitive.ObjectID{follower, following}], nil
}

func (f *fakeFollowRepo) FindFollowers(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for key := range f.edges {
		if key[1] == userID {
			ids = append(ids, key[0])
		}
	}
	return ids, int64(len(ids)), nil
}

func (f *fakeFollowRepo) FindFollowing(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for key := range f.edges {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, int64(len(ids)), nil
}

func (f *fakeFollowRepo) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	_, n, _ := f.FindFollowers(ctx, userID, 0, 0)
	return n, nil
}

func (f *fakeFollowRepo) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	_, n, _ := f.FindFollowing(ctx, userID, 0, 0)
	return n, nil
}

// recordingNotifier captures emitted notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
