package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"classwork-chatbot/internal/model"
	"classwork-chatbot/internal/pkg/jwtutil"
	"classwork-chatbot/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidUserType   = errors.New("invalid user type")
	ErrUsernameExists    = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// TokenRevoker remembers logged-out token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}

type AuthService struct {
	userRepo      *repository.UserRepository
	revoker       TokenRevoker
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	UserType string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userRepo *repository.UserRepository, revoker TokenRevoker, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := input.Username
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password
	userType := strings.TrimSpace(input.UserType)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrInvalidInput
	}
	// usernames are matched exactly on login
	if username != strings.TrimSpace(username) {
		return nil, ErrInvalidUsername
	}
	if userType == "" {
		userType = model.UserTypeStudent
	}
	if !model.ValidUserType(userType) {
		return nil, ErrInvalidUserType
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.CreateWithProfile(user, userType); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issue(user)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *jwtutil.Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidInput
	}
	if s.revoker == nil {
		return nil
	}
	until := time.Now().Add(s.jwtExpiration)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, until)
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.Role())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
