package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/allmight/taskapp/internal/database"
	"github.com/allmight/taskapp/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user record. The email must already be normalized.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			name: $name,
			age: $age,
			email: $email,
			hash: $hash,
			tokens: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":  user.Name,
		"age":   user.Age,
		"email": user.Email,
		"hash":  user.Hash,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	if data, ok := unwrapOne(result); ok {
		user.ID = convertSurrealID(data["id"])
		user.Tokens = []string{}
		user.CreatedOn = getTime(data, "created_on")
		user.UpdatedOn = getTime(data, "updated_on")
		return nil
	}
	return errors.New("no result returned")
}

// GetByID retrieves a user by ID. Returns nil, nil when no user matches.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.queryUser(ctx, query, vars)
}

// GetByEmail retrieves a user by normalized email. Returns nil, nil on no match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	return r.queryUser(ctx, query, vars)
}

// GetByIDWithToken retrieves the user whose id matches AND whose persisted
// token list still contains the exact token string. A structurally valid but
// revoked token finds no user. Returns nil, nil on no match.
func (r *UserRepository) GetByIDWithToken(ctx context.Context, id, token string) (*model.User, error) {
	query := `SELECT * FROM type::record($id) WHERE $token IN tokens`
	vars := map[string]interface{}{
		"id":    id,
		"token": token,
	}

	return r.queryUser(ctx, query, vars)
}

// Update persists the mutable profile fields and the password hash
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			age = $age,
			hash = $hash,
			updated_on = time::now()
	`

	vars := map[string]interface{}{
		"id":   user.ID,
		"name": user.Name,
		"age":  user.Age,
		"hash": user.Hash,
	}

	return r.db.Execute(ctx, query, vars)
}

// AddToken appends a token to the user's active token list
func (r *UserRepository) AddToken(ctx context.Context, userID, token string) error {
	query := `UPDATE type::record($id) SET tokens = array::append(tokens, $token), updated_on = time::now()`
	vars := map[string]interface{}{
		"id":    userID,
		"token": token,
	}

	return r.db.Execute(ctx, query, vars)
}

// RemoveToken removes exactly the matching token from the user's list
func (r *UserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	query := `UPDATE type::record($id) SET tokens = array::difference(tokens, [$token]), updated_on = time::now()`
	vars := map[string]interface{}{
		"id":    userID,
		"token": token,
	}

	return r.db.Execute(ctx, query, vars)
}

// ClearTokens removes every active token for the user
func (r *UserRepository) ClearTokens(ctx context.Context, userID string) error {
	query := `UPDATE type::record($id) SET tokens = [], updated_on = time::now()`
	vars := map[string]interface{}{"id": userID}

	return r.db.Execute(ctx, query, vars)
}

// SetAvatar stores the processed avatar image on the user record
func (r *UserRepository) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	query := `UPDATE type::record($id) SET avatar = $avatar, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     userID,
		"avatar": base64.StdEncoding.EncodeToString(avatar),
	}

	return r.db.Execute(ctx, query, vars)
}

// ClearAvatar removes the avatar field from the user record
func (r *UserRepository) ClearAvatar(ctx context.Context, userID string) error {
	// Setting NONE drops the field from the record entirely
	query := `UPDATE type::record($id) SET avatar = NONE, updated_on = time::now()`
	vars := map[string]interface{}{"id": userID}

	return r.db.Execute(ctx, query, vars)
}

// Delete deletes a user record
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

func (r *UserRepository) queryUser(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, ok := parseUserResult(result)
	if !ok {
		return nil, nil
	}
	return user, nil
}

// parseUserResult maps a SurrealDB record payload onto a model.User
func parseUserResult(result interface{}) (*model.User, bool) {
	data, ok := unwrapOne(result)
	if !ok {
		return nil, false
	}

	user := &model.User{
		ID:        convertSurrealID(data["id"]),
		Name:      getString(data, "name"),
		Age:       getInt(data, "age"),
		Email:     getString(data, "email"),
		Hash:      getString(data, "hash"),
		Tokens:    getStringSlice(data, "tokens"),
		Avatar:    getBytes(data, "avatar"),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
	return user, true
}
