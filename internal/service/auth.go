package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/allmight/taskapp/internal/database"
	"github.com/allmight/taskapp/internal/model"
)

const (
	// bcrypt cost factor
	bcryptCost = 8
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDWithToken(ctx context.Context, userID, token string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	AddToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) error
	ClearTokens(ctx context.Context, userID string) error
	SetAvatar(ctx context.Context, userID string, avatar []byte) error
	ClearAvatar(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}

// AuthService handles registration, login and session management
type AuthService struct {
	userRepo     UserRepository
	tokenService *TokenService
	mailer       Mailer
	logger       *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenService *TokenService, mailer Mailer, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		mailer:       mailer,
		logger:       logger,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string
	Age      int
	Email    string
	Password string
}

// AuthResult pairs a user with a freshly issued token
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new user account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Age < 0 {
		return nil, ErrNegativeAge
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:  name,
		Age:   req.Age,
		Email: email,
		Hash:  hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique email index catches registrations that race past the
		// lookup above.
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.sendAsync("welcome", user.Email, user.Name, s.mailer.SendWelcome)

	token, err := s.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Tokens = append(user.Tokens, token)

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user with email and password and issues a new
// token alongside any the user already holds.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !checkPassword(password, user.Hash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Tokens = append(user.Tokens, token)

	return &AuthResult{User: user, Token: token}, nil
}

// Logout revokes the single token the request was authenticated with,
// leaving the user's other sessions signed in.
func (s *AuthService) Logout(ctx context.Context, userID, token string) error {
	return s.tokenService.Revoke(ctx, userID, token)
}

// LogoutAll revokes every session the user holds
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.tokenService.RevokeAll(ctx, userID)
}

// sendAsync delivers an email without blocking the calling request.
// Failures are logged and otherwise dropped.
func (s *AuthService) sendAsync(kind, email, name string, send func(context.Context, string, string) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx, email, name); err != nil {
			s.logger.Error("email delivery failed", "kind", kind, "to", email, "error", err)
		}
	}()
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < model.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return ErrPasswordForbidden
	}
	return nil
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	if len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}
