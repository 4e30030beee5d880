package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/allmight/taskapp/internal/model"
)

// userUpdatableFields are the only profile fields a PATCH may set.
// A request naming any other field is rejected wholesale.
var userUpdatableFields = map[string]bool{
	"name":     true,
	"age":      true,
	"password": true,
}

// UserService handles profile operations and account deletion
type UserService struct {
	userRepo UserRepository
	taskRepo TaskRepository
	mailer   Mailer
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, taskRepo TaskRepository, mailer Mailer, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		mailer:   mailer,
		logger:   logger,
	}
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update applies a partial profile update. Before anything is written every
// key in the request is checked against the updatable set; one unknown key
// rejects the whole update. An empty update returns the profile unchanged.
func (s *UserService) Update(ctx context.Context, user *model.User, updates map[string]json.RawMessage) (*model.User, error) {
	if len(updates) == 0 {
		return user, nil
	}
	for field := range updates {
		if !userUpdatableFields[field] {
			return nil, ErrInvalidUpdateField
		}
	}

	if raw, ok := updates["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, ErrNameRequired
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}

	if raw, ok := updates["age"]; ok {
		var age int
		if err := json.Unmarshal(raw, &age); err != nil {
			return nil, ErrNegativeAge
		}
		if age < 0 {
			return nil, ErrNegativeAge
		}
		user.Age = age
	}

	if raw, ok := updates["password"]; ok {
		var password string
		if err := json.Unmarshal(raw, &password); err != nil {
			return nil, ErrPasswordRequired
		}
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.Hash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user's tasks and then the user. The cascade is
// best-effort: a failure deleting tasks aborts before the account is
// touched, but there is no transaction tying the two steps together.
func (s *UserService) Delete(ctx context.Context, user *model.User) error {
	if err := s.taskRepo.DeleteByOwner(ctx, user.ID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.sendCancellation(user.Email, user.Name)
	return nil
}

func (s *UserService) sendCancellation(email, name string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendCancellation(ctx, email, name); err != nil {
			s.logger.Error("email delivery failed", "kind", "cancellation", "to", email, "error", err)
		}
	}()
}
