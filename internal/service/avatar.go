package service

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/allmight/taskapp/internal/model"
)

const (
	avatarWidth  = 320
	avatarHeight = 240
)

var avatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AvatarService stores and serves profile images. Uploads are normalized
// to a fixed-size PNG regardless of the input format.
type AvatarService struct {
	userRepo UserRepository
}

// NewAvatarService creates a new avatar service
func NewAvatarService(userRepo UserRepository) *AvatarService {
	return &AvatarService{userRepo: userRepo}
}

// AllowedFilename reports whether the uploaded filename carries an
// accepted image extension.
func AllowedFilename(filename string) bool {
	return avatarExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Set validates, resizes and stores an uploaded avatar for the user
func (s *AvatarService) Set(ctx context.Context, userID string, data []byte) error {
	if len(data) > model.MaxAvatarBytes {
		return ErrAvatarTooLarge
	}

	normalized, err := normalizeAvatar(data)
	if err != nil {
		return err
	}
	return s.userRepo.SetAvatar(ctx, userID, normalized)
}

// Clear removes the user's stored avatar
func (s *AvatarService) Clear(ctx context.Context, userID string) error {
	return s.userRepo.ClearAvatar(ctx, userID)
}

// Get returns the stored avatar PNG for any user, not just the caller
func (s *AvatarService) Get(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasAvatar() {
		return nil, ErrAvatarNotFound
	}
	return user.Avatar, nil
}

// normalizeAvatar decodes a jpeg or png, scales it to 320x240 and
// re-encodes it as PNG.
func normalizeAvatar(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrAvatarInvalidFormat
	}
	if format != "jpeg" && format != "png" {
		return nil, ErrAvatarInvalidFormat
	}

	dst := image.NewRGBA(image.Rect(0, 0, avatarWidth, avatarHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
