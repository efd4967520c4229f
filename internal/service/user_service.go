package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"mixshare/internal/model"
	"mixshare/internal/repository"
	"mixshare/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
	Bio  *string `json:"bio" binding:"omitempty,max=500"`
}

// Profile is a user's public page: the profile itself plus its social
// and contribution counters.
type Profile struct {
	User           *model.PublicUser `json:"user"`
	Bio            string            `json:"bio"`
	CocktailCount  int64             `json:"cocktail_count"`
	FollowersCount int64             `json:"followers_count"`
	FollowingCount int64             `json:"following_count"`
	IsFollowing    bool              `json:"is_following"`
}

type UserService interface {
	GetProfile(ctx context.Context, username string, viewerID *primitive.ObjectID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req UpdateProfileRequest) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error)
	Search(ctx context.Context, query string, page, limit int) ([]*model.PublicUser, error)
}

type userService struct {
	userRepo     repository.UserRepository
	cocktailRepo repository.CocktailRepository
	followRepo   repository.FollowRepository
	cloudinary   *util.CloudinaryClient
}

func NewUserService(userRepo repository.UserRepository, cocktailRepo repository.CocktailRepository, followRepo repository.FollowRepository, cloudinary *util.CloudinaryClient) UserService {
	return &userService{userRepo: userRepo, cocktailRepo: cocktailRepo, followRepo: followRepo, cloudinary: cloudinary}
}

func (s *userService) GetProfile(ctx context.Context, username string, viewerID *primitive.ObjectID) (*Profile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, repository.ErrNotFound
	}

	cocktails, err := s.cocktailRepo.CountByCreator(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID != nil && *viewerID != user.ID {
		isFollowing, err = s.followRepo.Exists(ctx, *viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &Profile{
		User:           user.Public(),
		Bio:            user.Bio,
		CocktailCount:  cocktails,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req UpdateProfileRequest) (*model.User, error) {
	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateAvatar replaces the user's avatar, removing the previous asset
// after the new one is in place.
func (s *userService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error) {
	if s.cloudinary == nil {
		return nil, fmt.Errorf("image uploads are not configured")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open avatar %s: %w", file.Filename, err)
	}
	defer src.Close()

	fileData, err := util.ReadFileFromReader(src, file.Filename)
	if err != nil {
		return nil, fmt.Errorf("read avatar %s: %w", file.Filename, err)
	}

	img, err := s.cloudinary.ProcessFileFromMemory(fileData.Data, fileData.Filename)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	avatar := &model.Image{URL: img.URL, PublicID: img.PublicID}
	if err := s.userRepo.UpdateFields(ctx, userID, bson.M{"avatar": avatar}); err != nil {
		if derr := s.cloudinary.DestroyImage(img.PublicID); derr != nil {
			log.Printf("destroy orphaned avatar %s failed: %v", img.PublicID, derr)
		}
		return nil, err
	}

	if user.Avatar != nil && user.Avatar.PublicID != "" {
		if err := s.cloudinary.DestroyImage(user.Avatar.PublicID); err != nil {
			log.Printf("destroy old avatar %s failed: %v", user.Avatar.PublicID, err)
		}
	}

	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) Search(ctx context.Context, query string, page, limit int) ([]*model.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.userRepo.SearchUsers(ctx, query, limit, (page-1)*limit)
}
