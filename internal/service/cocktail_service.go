package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"mixshare/internal/config"
	"mixshare/internal/model"
	"mixshare/internal/repository"
	"mixshare/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListParams carries the raw listing query parameters before
// normalization.
type ListParams struct {
	Page           int
	Limit          int
	Category       string
	AlcoholContent string
	CreatedBy      string
	Search         string
	SortBy         string
	Fields         string
}

type ListResult struct {
	Items []*model.Cocktail
	Total int64
	Page  int
	Limit int
}

type CreateCocktailRequest struct {
	Name           string              `json:"name" binding:"required,min=2,max=120"`
	Description    string              `json:"description" binding:"required,max=2000"`
	Category       string              `json:"category" binding:"required,cocktail_category"`
	AlcoholContent string              `json:"alcohol_content" binding:"required,alcohol_content"`
	Flavor         string              `json:"flavor" binding:"required,flavor_profile"`
	Ingredients    []model.Ingredient  `json:"ingredients" binding:"required,min=1,dive"`
	Instructions   []model.Instruction `json:"instructions" binding:"required,min=1,dive"`
	GlassType      string              `json:"glass_type" binding:"omitempty,max=60"`
	PrepTime       int                 `json:"prep_time" binding:"omitempty,min=0,max=240"`
	Servings       int                 `json:"servings" binding:"omitempty,min=1,max=20"`
}

type UpdateCocktailRequest struct {
	Name           *string              `json:"name" binding:"omitempty,min=2,max=120"`
	Description    *string              `json:"description" binding:"omitempty,max=2000"`
	Category       *string              `json:"category" binding:"omitempty,cocktail_category"`
	AlcoholContent *string              `json:"alcohol_content" binding:"omitempty,alcohol_content"`
	Flavor         *string              `json:"flavor" binding:"omitempty,flavor_profile"`
	Ingredients    *[]model.Ingredient  `json:"ingredients" binding:"omitempty,min=1,dive"`
	Instructions   *[]model.Instruction `json:"instructions" binding:"omitempty,min=1,dive"`
	GlassType      *string              `json:"glass_type" binding:"omitempty,max=60"`
	PrepTime       *int                 `json:"prep_time" binding:"omitempty,min=0,max=240"`
	Servings       *int                 `json:"servings" binding:"omitempty,min=1,max=20"`
}

// CocktailDetail is the detail view: the cocktail plus the public
// profiles of everyone referenced in its embedded arrays.
type CocktailDetail struct {
	Cocktail *model.Cocktail `json:"cocktail"`
	Comments []CommentView   `json:"comments"`
	Likes    []LikeView      `json:"likes"`
	Ratings  []RatingView    `json:"ratings"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Author    *model.PublicUser  `json:"author"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

type LikeView struct {
	Author    *model.PublicUser `json:"author"`
	CreatedAt time.Time         `json:"createdAt"`
}

type RatingView struct {
	Author    *model.PublicUser `json:"author"`
	Rating    int               `json:"rating"`
	CreatedAt time.Time         `json:"createdAt"`
}

type CocktailService interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	GetDetail(ctx context.Context, id string, viewerID *primitive.ObjectID, isAdmin bool) (*CocktailDetail, error)
	Create(ctx context.Context, userID primitive.ObjectID, req CreateCocktailRequest, image *multipart.FileHeader) (*model.Cocktail, error)
	Update(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool, req UpdateCocktailRequest) (*model.Cocktail, error)
	Delete(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool) error
	MyCocktails(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ListResult, error)
}

type cocktailService struct {
	cocktailRepo repository.CocktailRepository
	userRepo     repository.UserRepository
	cloudinary   *util.CloudinaryClient
	cfg          *config.Config
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

func NewCocktailService(cocktailRepo repository.CocktailRepository, userRepo repository.UserRepository, cloudinary *util.CloudinaryClient, cfg *config.Config) CocktailService {
	return &cocktailService{cocktailRepo: cocktailRepo, userRepo: userRepo, cloudinary: cloudinary, cfg: cfg}
}

// List normalizes the raw parameters into a query descriptor and runs
// it. Invalid enum values and sort keys are rejected rather than
// silently ignored.
func (s *cocktailService) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if params.Category != "" && !model.ValidCategory(params.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, params.Category)
	}
	if params.AlcoholContent != "" && !model.ValidAlcoholContent(params.AlcoholContent) {
		return nil, fmt.Errorf("%w: unknown alcohol content %q", ErrValidation, params.AlcoholContent)
	}

	sortBy := params.SortBy
	switch sortBy {
	case "", repository.SortByViews, repository.SortByRating, repository.SortByLikes:
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, params.SortBy)
	}

	q := repository.ListQuery{
		Page:           page,
		Limit:          limit,
		Category:       params.Category,
		AlcoholContent: params.AlcoholContent,
		CreatedBy:      params.CreatedBy,
		Search:         strings.TrimSpace(params.Search),
		SortBy:         sortBy,
		Fields:         parseFields(params.Fields),
	}

	items, total, err := s.cocktailRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func parseFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// GetDetail returns the full document with every referenced user
// expanded. Unapproved cocktails are visible only to their creator and
// admins. The view counter is bumped after the response is assembled.
func (s *cocktailService) GetDetail(ctx context.Context, id string, viewerID *primitive.ObjectID, isAdmin bool) (*CocktailDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	cocktail, err := s.cocktailRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if !cocktail.IsApproved {
		isOwner := viewerID != nil && *viewerID == cocktail.CreatedBy
		if !isOwner && !isAdmin {
			return nil, repository.ErrNotFound
		}
	}

	if err := s.cocktailRepo.ExpandCreators(ctx, []*model.Cocktail{cocktail}); err != nil {
		return nil, err
	}

	users, err := s.expandParticipants(ctx, cocktail)
	if err != nil {
		return nil, err
	}

	comments := make([]CommentView, 0, len(cocktail.Comments))
	for _, c := range cocktail.Comments {
		comments = append(comments, CommentView{
			ID:        c.ID,
			Author:    users[c.User],
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}

	likes := make([]LikeView, 0, len(cocktail.Likes))
	for _, l := range cocktail.Likes {
		likes = append(likes, LikeView{Author: users[l.User], CreatedAt: l.CreatedAt})
	}

	ratings := make([]RatingView, 0, len(cocktail.Ratings))
	for _, r := range cocktail.Ratings {
		ratings = append(ratings, RatingView{Author: users[r.User], Rating: r.Rating, CreatedAt: r.CreatedAt})
	}

	go func() {
		viewCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cocktailRepo.IncrementViews(viewCtx, oid); err != nil {
			log.Printf("increment views failed for %s: %v", oid.Hex(), err)
		}
	}()

	return &CocktailDetail{Cocktail: cocktail, Comments: comments, Likes: likes, Ratings: ratings}, nil
}

func (s *cocktailService) expandParticipants(ctx context.Context, cocktail *model.Cocktail) (map[primitive.ObjectID]*model.PublicUser, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	collect := func(id primitive.ObjectID) {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, l := range cocktail.Likes {
		collect(l.User)
	}
	for _, r := range cocktail.Ratings {
		collect(r.User)
	}
	for _, c := range cocktail.Comments {
		collect(c.User)
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]*model.PublicUser{}, nil
	}
	return s.userRepo.FindPublicByIDs(ctx, ids)
}

// Create validates the submission, pushes the image through the
// upload pipeline and stores the cocktail unapproved.
func (s *cocktailService) Create(ctx context.Context, userID primitive.ObjectID, req CreateCocktailRequest, image *multipart.FileHeader) (*model.Cocktail, error) {
	if !model.ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if !model.ValidAlcoholContent(req.AlcoholContent) {
		return nil, fmt.Errorf("%w: unknown alcohol content %q", ErrValidation, req.AlcoholContent)
	}
	if !model.ValidFlavor(req.Flavor) {
		return nil, fmt.Errorf("%w: unknown flavor %q", ErrValidation, req.Flavor)
	}
	if image == nil && !s.cfg.IsTest() {
		return nil, ErrImageRequired
	}

	var uploaded *model.Image
	if image != nil {
		img, err := s.uploadImage(image)
		if err != nil {
			return nil, err
		}
		uploaded = img
	}

	cocktail := &model.Cocktail{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		AlcoholContent: req.AlcoholContent,
		Flavor:         req.Flavor,
		Ingredients:    req.Ingredients,
		Instructions:   req.Instructions,
		GlassType:      req.GlassType,
		PrepTime:       req.PrepTime,
		Servings:       req.Servings,
		Image:          uploaded,
		CreatedBy:      userID,
	}

	if err := s.cocktailRepo.Create(ctx, cocktail); err != nil {
		s.destroyImage(uploaded)
		return nil, err
	}
	return cocktail, nil
}

func (s *cocktailService) uploadImage(header *multipart.FileHeader) (*model.Image, error) {
	if s.cloudinary == nil {
		return nil, fmt.Errorf("image uploads are not configured")
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", header.Filename, err)
	}
	defer file.Close()

	fileData, err := util.ReadFileFromReader(file, header.Filename)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", header.Filename, err)
	}

	img, err := s.cloudinary.ProcessFileFromMemory(fileData.Data, fileData.Filename)
	if err != nil {
		return nil, fmt.Errorf("upload image %s: %w", header.Filename, err)
	}
	return &model.Image{URL: img.URL, PublicID: img.PublicID}, nil
}

func (s *cocktailService) destroyImage(image *model.Image) {
	if s.cloudinary == nil || image == nil || image.PublicID == "" {
		return
	}
	if err := s.cloudinary.DestroyImage(image.PublicID); err != nil {
		log.Printf("destroy image %s failed: %v", image.PublicID, err)
	}
}

// Update applies a partial edit. Only the creator or an admin may
// edit; a non-admin edit sends the cocktail back through moderation.
func (s *cocktailService) Update(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool, req UpdateCocktailRequest) (*model.Cocktail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	cocktail, err := s.cocktailRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if cocktail.CreatedBy != userID && !isAdmin {
		return nil, ErrForbidden
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *req.Category)
		}
		fields["category"] = *req.Category
	}
	if req.AlcoholContent != nil {
		if !model.ValidAlcoholContent(*req.AlcoholContent) {
			return nil, fmt.Errorf("%w: unknown alcohol content %q", ErrValidation, *req.AlcoholContent)
		}
		fields["alcoholContent"] = *req.AlcoholContent
	}
	if req.Flavor != nil {
		if !model.ValidFlavor(*req.Flavor) {
			return nil, fmt.Errorf("%w: unknown flavor %q", ErrValidation, *req.Flavor)
		}
		fields["flavor"] = *req.Flavor
	}
	if req.Ingredients != nil {
		fields["ingredients"] = *req.Ingredients
	}
	if req.Instructions != nil {
		fields["instructions"] = *req.Instructions
	}
	if req.GlassType != nil {
		fields["glassType"] = *req.GlassType
	}
	if req.PrepTime != nil {
		fields["prepTime"] = *req.PrepTime
	}
	if req.Servings != nil {
		fields["servings"] = *req.Servings
	}
	if len(fields) == 0 {
		return cocktail, nil
	}

	if !isAdmin {
		fields["isApproved"] = false
	}

	if err := s.cocktailRepo.UpdateFields(ctx, oid, fields); err != nil {
		return nil, err
	}
	return s.cocktailRepo.FindByID(ctx, oid)
}

// Delete removes the cocktail and its hosted images. Only the creator
// or an admin may delete.
func (s *cocktailService) Delete(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	cocktail, err := s.cocktailRepo.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if cocktail.CreatedBy != userID && !isAdmin {
		return ErrForbidden
	}

	if err := s.cocktailRepo.Delete(ctx, oid); err != nil {
		return err
	}

	s.destroyImage(cocktail.Image)
	return nil
}

func (s *cocktailService) MyCocktails(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.cocktailRepo.FindByCreator(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}
