package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mixshare/internal/model"
	"mixshare/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FollowResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
}

type FollowService interface {
	Toggle(ctx context.Context, followerID primitive.ObjectID, targetUsername string) (*FollowResult, error)
	Followers(ctx context.Context, username string, page, limit int) ([]*model.PublicUser, int64, error)
	Following(ctx context.Context, username string, page, limit int) ([]*model.PublicUser, int64, error)
}

type followService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, notifier Notifier) FollowService {
	return &followService{followRepo: followRepo, userRepo: userRepo, notifier: notifier}
}

// Toggle follows the target if not yet followed, otherwise unfollows.
func (s *followService) Toggle(ctx context.Context, followerID primitive.ObjectID, targetUsername string) (*FollowResult, error) {
	targetUser, err := s.userRepo.FindByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	target := targetUser.ID
	if target == followerID {
		return nil, ErrSelfFollow
	}

	following := false
	err = s.followRepo.Create(ctx, followerID, target)
	switch {
	case err == nil:
		following = true
	case errors.Is(err, repository.ErrDuplicateKey):
		// Already following, so this toggle unfollows.
		if err := s.followRepo.Delete(ctx, followerID, target); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	default:
		return nil, err
	}

	count, err := s.followRepo.CountFollowers(ctx, target)
	if err != nil {
		return nil, err
	}

	if following && s.notifier != nil {
		actor, err := s.userRepo.FindByID(ctx, followerID)
		if err != nil {
			log.Printf("follow notify: load actor failed: %v", err)
		} else {
			sender := followerID
			s.notifier.Notify(ctx, &model.Notification{
				User:    targetUser.ID,
				Sender:  &sender,
				Type:    model.NotificationTypeFollow,
				Message: fmt.Sprintf("%s started following you", actor.Username),
			})
		}
	}

	return &FollowResult{Following: following, FollowersCount: count}, nil
}

func (s *followService) Followers(ctx context.Context, username string, page, limit int) ([]*model.PublicUser, int64, error) {
	return s.edgeProfiles(ctx, username, page, limit, s.followRepo.FindFollowers)
}

func (s *followService) Following(ctx context.Context, username string, page, limit int) ([]*model.PublicUser, int64, error) {
	return s.edgeProfiles(ctx, username, page, limit, s.followRepo.FindFollowing)
}

type edgeFinder func(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error)

func (s *followService) edgeProfiles(ctx context.Context, username string, page, limit int, find edgeFinder) ([]*model.PublicUser, int64, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	oid := user.ID
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	ids, total, err := find(ctx, oid, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	profiles, err := s.userRepo.FindPublicByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	// Preserve edge order; users deleted since following are skipped.
	out := make([]*model.PublicUser, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, total, nil
}
