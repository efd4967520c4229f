package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mixshare/internal/model"
	"mixshare/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=500"`
}

type RateRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

type RateResult struct {
	Rating        int     `json:"rating"`
	AverageRating float64 `json:"average_rating"`
}

type EngagementService interface {
	ToggleLike(ctx context.Context, cocktailID string, userID primitive.ObjectID) (*LikeResult, error)
	Rate(ctx context.Context, cocktailID string, userID primitive.ObjectID, req RateRequest) (*RateResult, error)
	Comment(ctx context.Context, cocktailID string, userID primitive.ObjectID, req CommentRequest) (*model.Comment, error)
}

type engagementService struct {
	cocktailRepo repository.CocktailRepository
	userRepo     repository.UserRepository
	notifier     Notifier
}

func NewEngagementService(cocktailRepo repository.CocktailRepository, userRepo repository.UserRepository, notifier Notifier) EngagementService {
	return &engagementService{cocktailRepo: cocktailRepo, userRepo: userRepo, notifier: notifier}
}

// ToggleLike flips the caller's like on an approved cocktail and
// returns the resulting state.
func (s *engagementService) ToggleLike(ctx context.Context, cocktailID string, userID primitive.ObjectID) (*LikeResult, error) {
	cocktail, err := s.visibleCocktail(ctx, cocktailID)
	if err != nil {
		return nil, err
	}

	liked, err := s.cocktailRepo.ToggleLike(ctx, cocktail.ID, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.cocktailRepo.FindByID(ctx, cocktail.ID)
	if err != nil {
		return nil, err
	}

	if liked && cocktail.CreatedBy != userID {
		s.notify(userID, cocktail, model.NotificationTypeLike, "%s liked your cocktail %q")
	}

	return &LikeResult{Liked: liked, LikesCount: updated.LikesCount}, nil
}

// Rate records or overwrites the caller's rating.
func (s *engagementService) Rate(ctx context.Context, cocktailID string, userID primitive.ObjectID, req RateRequest) (*RateResult, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	cocktail, err := s.visibleCocktail(ctx, cocktailID)
	if err != nil {
		return nil, err
	}

	if err := s.cocktailRepo.UpsertRating(ctx, cocktail.ID, userID, req.Rating); err != nil {
		return nil, err
	}

	updated, err := s.cocktailRepo.FindByID(ctx, cocktail.ID)
	if err != nil {
		return nil, err
	}

	return &RateResult{Rating: req.Rating, AverageRating: updated.AverageRating}, nil
}

// Comment appends a comment and notifies the creator.
func (s *engagementService) Comment(ctx context.Context, cocktailID string, userID primitive.ObjectID, req CommentRequest) (*model.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	cocktail, err := s.visibleCocktail(ctx, cocktailID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{User: userID, Text: text}
	if err := s.cocktailRepo.AppendComment(ctx, cocktail.ID, comment); err != nil {
		return nil, err
	}

	if cocktail.CreatedBy != userID {
		s.notify(userID, cocktail, model.NotificationTypeComment, "%s commented on your cocktail %q")
	}

	return comment, nil
}

// visibleCocktail resolves the ID and rejects engagement with
// unapproved cocktails.
func (s *engagementService) visibleCocktail(ctx context.Context, cocktailID string) (*model.Cocktail, error) {
	oid, err := primitive.ObjectIDFromHex(cocktailID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	cocktail, err := s.cocktailRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !cocktail.IsApproved {
		return nil, repository.ErrNotFound
	}
	return cocktail, nil
}

func (s *engagementService) notify(sender primitive.ObjectID, cocktail *model.Cocktail, kind, format string) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	actor, err := s.userRepo.FindByID(ctx, sender)
	if err != nil {
		log.Printf("notify: load sender failed: %v", err)
		return
	}

	target := cocktail.ID
	s.notifier.Notify(ctx, &model.Notification{
		User:     cocktail.CreatedBy,
		Sender:   &sender,
		Type:     kind,
		Message:  fmt.Sprintf(format, actor.Username, cocktail.Name),
		TargetID: &target,
	})
}
