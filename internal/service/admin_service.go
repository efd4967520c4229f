package service

import (
	"context"
	"fmt"

	"mixshare/internal/model"
	"mixshare/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalCocktails   int64 `json:"total_cocktails"`
	PendingCocktails int64 `json:"pending_cocktails"`
}

type AdminService interface {
	PendingCocktails(ctx context.Context, page, limit int) (*ListResult, error)
	SetApproval(ctx context.Context, cocktailID string, approved bool) (*model.Cocktail, error)
	SetFeatured(ctx context.Context, cocktailID string, featured bool) (*model.Cocktail, error)
	ListUsers(ctx context.Context, page, limit int) ([]*model.User, int64, error)
	SetBanned(ctx context.Context, userID string, banned bool) error
	GetStats(ctx context.Context) (*Stats, error)
}

type adminService struct {
	cocktailRepo repository.CocktailRepository
	userRepo     repository.UserRepository
	notifier     Notifier
}

func NewAdminService(cocktailRepo repository.CocktailRepository, userRepo repository.UserRepository, notifier Notifier) AdminService {
	return &adminService{cocktailRepo: cocktailRepo, userRepo: userRepo, notifier: notifier}
}

func (a *adminService) PendingCocktails(ctx context.Context, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := a.cocktailRepo.FindPending(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if err := a.cocktailRepo.ExpandCreators(ctx, items); err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// SetApproval approves or rejects a submission and notifies its
// creator on approval.
func (a *adminService) SetApproval(ctx context.Context, cocktailID string, approved bool) (*model.Cocktail, error) {
	oid, err := primitive.ObjectIDFromHex(cocktailID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if err := a.cocktailRepo.UpdateFields(ctx, oid, bson.M{"isApproved": approved}); err != nil {
		return nil, err
	}

	cocktail, err := a.cocktailRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if approved && a.notifier != nil {
		target := cocktail.ID
		a.notifier.Notify(ctx, &model.Notification{
			User:     cocktail.CreatedBy,
			Type:     model.NotificationTypeApproval,
			Message:  fmt.Sprintf("Your cocktail %q has been approved", cocktail.Name),
			TargetID: &target,
		})
	}

	return cocktail, nil
}

func (a *adminService) SetFeatured(ctx context.Context, cocktailID string, featured bool) (*model.Cocktail, error) {
	oid, err := primitive.ObjectIDFromHex(cocktailID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if err := a.cocktailRepo.UpdateFields(ctx, oid, bson.M{"isFeatured": featured}); err != nil {
		return nil, err
	}
	return a.cocktailRepo.FindByID(ctx, oid)
}

func (a *adminService) ListUsers(ctx context.Context, page, limit int) ([]*model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return a.userRepo.FindAll(ctx, limit, (page-1)*limit)
}

func (a *adminService) SetBanned(ctx context.Context, userID string, banned bool) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}
	return a.userRepo.SetBanned(ctx, oid, banned)
}

func (a *adminService) GetStats(ctx context.Context) (*Stats, error) {
	users, err := a.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	cocktails, err := a.cocktailRepo.Count(ctx, false)
	if err != nil {
		return nil, err
	}
	approved, err := a.cocktailRepo.Count(ctx, true)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:       users,
		TotalCocktails:   cocktails,
		PendingCocktails: cocktails - approved,
	}, nil
}
