package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required"`
	Division string `json:"division"`
	Password string `json:"password" binding:"omitempty,min=6"` // only for local bootstrap accounts
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Division string `json:"division"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// --- Interface ---

// UserService manages the user registry. Accounts are administrator-managed;
// Login exists only for local bootstrap accounts and issues a token with
// the same claim shape the external identity provider uses.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if !model.ValidRole(req.Role) {
		return nil, apperror.InvalidInput("invalid role: must be staff, div_head or admin")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.InvalidInput("email already registered")
	}

	division := strings.TrimSpace(req.Division)
	if division == "" {
		division = model.DefaultDivision
	}

	user := &model.User{
		Name:     req.Name,
		Email:    email,
		Role:     req.Role,
		Division: division,
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("division", user.Division))
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, apperror.InvalidInput("invalid role: must be staff, div_head or admin")
		}
		user.Role = req.Role
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Division != "" {
		user.Division = strings.TrimSpace(req.Division)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if user.Password == "" {
		// Provider-managed account, no local credential.
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	// Same claim shape as identity-provider tokens, so the auth middleware
	// resolves both the same way.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})

	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, err
	}

	return &TokenResponse{Token: signed}, nil
}
