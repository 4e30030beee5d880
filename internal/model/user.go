package model

import "time"

const (
	// MinPasswordLength is the minimum plaintext password length
	MinPasswordLength = 6

	// MaxAvatarBytes is the maximum accepted avatar upload size (1 MB)
	MaxAvatarBytes = 1_000_000
)

// User represents a user account.
//
// Hash, Tokens and Avatar are never serialized: API responses expose only the
// public profile fields.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Email     string    `json:"email"`
	Hash      string    `json:"-"`
	Tokens    []string  `json:"-"`
	Avatar    []byte    `json:"-"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// HasToken reports whether the exact token string is in the user's active list
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// HasAvatar reports whether the user has a stored avatar image
func (u *User) HasAvatar() bool {
	return len(u.Avatar) > 0
}
