// Package avatar stores profile pictures on disk and maintains the role ->
// default avatar assignment used at registration.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"identity-api/internal/model"
	"identity-api/internal/util"
)

const thumbnailMaxDim = 128

// Exhaustive role mappings; adding a role without extending these is a
// compile-time reminder via the tests in service_test.go.
var defaultAvatars = map[model.Role]string{
	model.RoleAdmin:     "admin-icon.png",
	model.RoleUserAdmin: "user-admin-icon.png",
	model.RoleStaff:     "staff-icon.png",
	model.RoleUser:      "user-icon.png",
}

var roleFolders = map[model.Role]string{
	model.RoleAdmin:     "admin",
	model.RoleUserAdmin: "userAdmin",
	model.RoleStaff:     "staff",
	model.RoleUser:      "user",
}

type Service struct {
	root string
}

func NewService(root string) (*Service, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("avatar root is required")
	}

	if err := os.MkdirAll(filepath.Join(root, "default"), 0o755); err != nil {
		return nil, fmt.Errorf("create avatar root: %w", err)
	}

	return &Service{root: root}, nil
}

// SetDefault assigns the role's stock avatar; called before the user row is
// first persisted.
func (s *Service) SetDefault(u model.User) model.User {
	name, ok := defaultAvatars[u.Role]
	if !ok {
		name = defaultAvatars[model.RoleUser]
	}

	u.AvatarName = name
	u.AvatarPath = filepath.Join("default", name)
	return u
}

func (s *Service) IsDefault(name string) bool {
	for _, stock := range defaultAvatars {
		if stock == name {
			return true
		}
	}
	return false
}

// Save writes a new avatar under the user's role folder, renders a PNG
// thumbnail next to it and removes the previous upload unless it was a stock
// image. The returned user carries the new avatar fields but is not
// persisted here.
func (s *Service) Save(u model.User, originalName string, data []byte) (model.User, error) {
	if len(data) == 0 {
		return model.User{}, model.ErrInvalidInput
	}

	if !util.IsAvatarMIME(util.DetectMIME(data)) {
		return model.User{}, model.ErrInvalidInput
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return model.User{}, fmt.Errorf("decode avatar image: %w", err)
	}

	folder, ok := roleFolders[u.Role]
	if !ok {
		folder = roleFolders[model.RoleUser]
	}

	if err := os.MkdirAll(filepath.Join(s.root, folder), 0o755); err != nil {
		return model.User{}, fmt.Errorf("create role folder: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !util.IsImageExtension(ext) {
		ext = ".png"
	}

	name := uuid.NewString() + ext
	path := filepath.Join(folder, name)

	if err := os.WriteFile(filepath.Join(s.root, path), data, 0o644); err != nil {
		return model.User{}, fmt.Errorf("write avatar: %w", err)
	}

	if err := s.writeThumbnail(decoded, filepath.Join(s.root, thumbnailPath(path))); err != nil {
		_ = os.Remove(filepath.Join(s.root, path))
		return model.User{}, err
	}

	s.removeStored(u)

	u.AvatarName = name
	u.AvatarPath = path
	return u, nil
}

// Remove deletes a custom avatar and restores the role default.
func (s *Service) Remove(u model.User) (model.User, error) {
	if s.IsDefault(u.AvatarName) {
		return model.User{}, model.ErrInvalidInput
	}

	s.removeStored(u)
	return s.SetDefault(u), nil
}

// Open returns the avatar file along with its detected content type; the
// caller closes the file.
func (s *Service) Open(u model.User) (*os.File, string, error) {
	file, err := os.Open(filepath.Join(s.root, u.AvatarPath))
	if err != nil {
		return nil, "", fmt.Errorf("open avatar: %w", err)
	}

	mimeType, err := util.DetectMIMEFromFile(file)
	if err != nil {
		file.Close()
		return nil, "", fmt.Errorf("detect avatar type: %w", err)
	}

	return file, mimeType, nil
}

func (s *Service) removeStored(u model.User) {
	if u.AvatarPath == "" || s.IsDefault(u.AvatarName) {
		return
	}

	_ = os.Remove(filepath.Join(s.root, u.AvatarPath))
	_ = os.Remove(filepath.Join(s.root, thumbnailPath(u.AvatarPath)))
}

func (s *Service) writeThumbnail(src image.Image, path string) error {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > height {
		height = height * thumbnailMaxDim / width
		width = thumbnailMaxDim
	} else {
		width = width * thumbnailMaxDim / height
		height = thumbnailMaxDim
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, dst); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}

	return nil
}

func thumbnailPath(avatarPath string) string {
	ext := filepath.Ext(avatarPath)
	return strings.TrimSuffix(avatarPath, ext) + "_thumb.png"
}
