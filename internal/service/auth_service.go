package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mixshare/internal/config"
	"mixshare/internal/model"
	"mixshare/internal/repository"
	"mixshare/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,alphanum,min=3,max=30"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User   *model.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	redis    *util.RedisClient
	cfg      *config.Config
}

const loginAttemptPrefix = "login:attempts:"

func NewAuthService(userRepo repository.UserRepository, redis *util.RedisClient, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, redis: redis, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index is the authority; the lookups above are a
		// friendlier first check.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	log.Printf("user registered: %s", user.Username)
	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	locked, err := s.isLockedOut(req.Email)
	if err != nil {
		log.Printf("login lockout check failed: %v", err)
	}
	if locked {
		return nil, ErrAccountLocked
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.recordFailedAttempt(req.Email)
		return nil, ErrInvalidCredentials
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		s.recordFailedAttempt(req.Email)
		return nil, ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, ErrAccountBanned
	}

	s.clearFailedAttempts(req.Email)

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("update last login failed for %s: %v", user.Username, err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := util.ValidateToken(req.RefreshToken, s.cfg.JWTSecret)
	if err != nil || claims.Type != util.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Re-read the user so a ban or admin change takes effect on the
	// next rotation.
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.IsBanned {
		return nil, ErrAccountBanned
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *authService) issueTokens(user *model.User) (TokenPair, error) {
	access, err := util.GenerateToken(user.ID.Hex(), user.Email, user.IsAdmin, util.TokenTypeAccess,
		s.cfg.JWTSecret, time.Duration(s.cfg.JWTExpiryHours)*time.Hour)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := util.GenerateToken(user.ID.Hex(), user.Email, user.IsAdmin, util.TokenTypeRefresh,
		s.cfg.JWTSecret, time.Duration(s.cfg.RefreshExpiryHours)*time.Hour)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login attempt tracking. Counters live in redis with the lockout
// window as TTL; without redis the lockout is simply off.

func (s *authService) isLockedOut(email string) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	key := loginAttemptPrefix + email
	val, err := s.redis.Get(key)
	if err != nil {
		return false, nil
	}
	attempts := 0
	fmt.Sscanf(val, "%d", &attempts)
	if attempts < s.cfg.LoginMaxAttempts {
		return false, nil
	}
	if ttl, err := s.redis.TTL(key); err == nil && ttl > 0 {
		log.Printf("login for %s locked for another %s", email, ttl.Round(time.Second))
	}
	return true, nil
}

func (s *authService) recordFailedAttempt(email string) {
	if s.redis == nil {
		return
	}
	key := loginAttemptPrefix + email
	count, err := s.redis.Incr(key)
	if err != nil {
		log.Printf("record login attempt failed: %v", err)
		return
	}
	if count == 1 {
		_ = s.redis.Expire(key, time.Duration(s.cfg.LoginLockoutMinute)*time.Minute)
	}
}

func (s *authService) clearFailedAttempts(email string) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Delete(loginAttemptPrefix + email)
}
