// Package account manages user profiles and profile pictures.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"crimson-db/internal/auth"
	"crimson-db/internal/catalog"
	"crimson-db/internal/db"
	"crimson-db/internal/media"

	"gorm.io/gorm"
)

type Profile struct {
	UserID              string    `json:"userID"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PfpURL              string    `json:"pfpURL"`
	IsDev               bool      `json:"isDev"`
	AccountCreationDate time.Time `json:"accountCreationDate"`
}

// EmailChanger updates the sign-in email of an account inside tx.
type EmailChanger interface {
	ChangeEmailTx(ctx context.Context, tx *gorm.DB, userID, email string) error
}

// Storage holds uploaded profile pictures.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(url string) (string, bool)
}

type Service struct {
	conn    *gorm.DB
	emails  EmailChanger
	storage Storage
	prefix  string
	logger  *slog.Logger
	now     func() time.Time
}

// New builds the profile service. prefix is prepended to every upload key.
func New(conn *gorm.DB, emails EmailChanger, storage Storage, prefix string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		conn:    conn,
		emails:  emails,
		storage: storage,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// WithTx returns a copy of s that runs its queries on tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	clone := *s
	clone.conn = tx
	return &clone
}

func toProfile(row db.User) Profile {
	return Profile{
		UserID:              row.UserID,
		Username:            row.Username,
		Email:               row.Email,
		PfpURL:              row.PfpURL,
		IsDev:               row.IsDev,
		AccountCreationDate: row.AccountCreationDate.UTC(),
	}
}

func unauthorized() error {
	return &catalog.Error{Kind: catalog.Unauthorized, Message: "Unauthorized: User not authenticated."}
}

func (s *Service) Profile(ctx context.Context, p catalog.Principal) (*Profile, error) {
	if p.IsZero() {
		return nil, unauthorized()
	}
	var row db.User
	if err := s.conn.WithContext(ctx).Where("user_id = ?", p.UserID).First(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, &catalog.Error{Kind: catalog.NotFound, Message: "Profile not found in database.", Err: err}
		}
		return nil, &catalog.Error{Kind: catalog.InternalError, Message: "Database query failed.", Err: err}
	}
	profile := toProfile(row)
	return &profile, nil
}

// CreateProfile creates the profile row for a new account. The username
// defaults to the local part of the email.
func (s *Service) CreateProfile(ctx context.Context, p catalog.Principal) (*Profile, error) {
	if p.IsZero() {
		return nil, unauthorized()
	}
	username, _, _ := strings.Cut(p.Email, "@")
	row := db.User{
		UserID:              p.UserID,
		Username:            username,
		Email:               p.Email,
		AccountCreationDate: s.now().UTC(),
	}
	if err := s.conn.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &catalog.Error{Kind: catalog.Conflict, Message: "Profile already exists", Err: err}
		}
		return nil, &catalog.Error{Kind: catalog.InternalError, Message: "Failed to create profile", Err: err}
	}
	profile := toProfile(row)
	return &profile, nil
}

// UpdateProfile applies username, email and isDev changes. A new email is
// written to the identity and the profile in one transaction.
func (s *Service) UpdateProfile(ctx context.Context, p catalog.Principal, patch map[string]any) (*Profile, error) {
	if p.IsZero() {
		return nil, unauthorized()
	}
	if len(patch) == 0 {
		return nil, &catalog.Error{Kind: catalog.EmptyUpdate, Message: "No update data provided."}
	}

	columns := make(map[string]any, len(patch))
	var newEmail string
	for key, raw := range patch {
		switch key {
		case "username":
			name, ok := raw.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, &catalog.Error{Kind: catalog.MissingRequiredField, Message: "username must be a non-empty string"}
			}
			columns["username"] = strings.TrimSpace(name)
		case "email":
			email, ok := raw.(string)
			if !ok || strings.TrimSpace(email) == "" {
				return nil, &catalog.Error{Kind: catalog.MissingRequiredField, Message: "email must be a non-empty string"}
			}
			newEmail = strings.ToLower(strings.TrimSpace(email))
		case "isDev":
			dev, ok := raw.(bool)
			if !ok {
				return nil, &catalog.Error{Kind: catalog.MissingRequiredField, Message: "isDev must be a boolean"}
			}
			columns["is_dev"] = dev
		default:
			return nil, &catalog.Error{Kind: catalog.MissingRequiredField, Message: fmt.Sprintf("Unknown field %q", key)}
		}
	}

	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newEmail != "" {
			if err := s.emails.ChangeEmailTx(ctx, tx, p.UserID, newEmail); err != nil {
				return emailError(err)
			}
			columns["email"] = newEmail
		}
		return s.update(tx, p.UserID, columns)
	})
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, p)
}

func emailError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrEmailTaken):
		return &catalog.Error{Kind: catalog.MissingRequiredField, Message: err.Error(), Err: err}
	case errors.Is(err, auth.ErrNoSession):
		return &catalog.Error{Kind: catalog.Unauthorized, Message: "Unauthorized: User not authenticated.", Err: err}
	default:
		return &catalog.Error{Kind: catalog.InternalError, Message: "Failed to update email.", Err: err}
	}
}

func (s *Service) update(tx *gorm.DB, userID string, columns map[string]any) error {
	result := tx.Model(&db.User{}).Where("user_id = ?", userID).Updates(columns)
	if result.Error != nil {
		return &catalog.Error{Kind: catalog.InternalError, Message: "Failed to update profile data.", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &catalog.Error{Kind: catalog.NotFound, Message: "Profile not found in database."}
	}
	return nil
}

var extPattern = regexp.MustCompile(`(?i)\.([0-9a-z]+)$`)

// pictureKey builds <prefix>/<userID>/<userID>-<unixmillis>.<ext>.
func (s *Service) pictureKey(userID, filename string) string {
	ext := "jpg"
	if m := extPattern.FindStringSubmatch(filename); m != nil {
		ext = strings.ToLower(m[1])
	}
	name := fmt.Sprintf("%s/%s-%d.%s", userID, userID, s.now().UnixMilli(), ext)
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// SetProfilePicture uploads a new picture and points the profile at it.
// The previous picture is removed once the profile no longer refers to it.
func (s *Service) SetProfilePicture(ctx context.Context, p catalog.Principal, filename, contentType string, body io.Reader) (*Profile, error) {
	if p.IsZero() {
		return nil, unauthorized()
	}
	if body == nil {
		return nil, &catalog.Error{Kind: catalog.MissingRequiredField, Message: "No file provided."}
	}
	if s.storage == nil {
		return nil, &catalog.Error{Kind: catalog.InternalError, Message: "Storage is not configured."}
	}
	current, err := s.Profile(ctx, p)
	if err != nil {
		return nil, err
	}
	key, err := s.storage.Upload(ctx, s.pictureKey(p.UserID, filename), contentType, body)
	if err != nil {
		if errors.Is(err, media.ErrForbidden) {
			return nil, &catalog.Error{Kind: catalog.Forbidden, Message: "Permission denied. Check the storage policy for the avatars bucket.", Err: err}
		}
		return nil, &catalog.Error{Kind: catalog.InternalError, Message: "Failed to upload image to storage.", Err: err}
	}
	url := s.storage.PublicURL(key)
	if err := s.update(s.conn.WithContext(ctx), p.UserID, map[string]any{"pfp_url": url}); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile picture updated", "user_id", p.UserID, "key", key)
	if current.PfpURL != "" && current.PfpURL != url {
		s.removePicture(ctx, current.PfpURL)
	}
	return s.Profile(ctx, p)
}

// removePicture deletes an old picture. Failures are logged, not returned.
func (s *Service) removePicture(ctx context.Context, pictureURL string) {
	key, ok := s.storage.KeyFromURL(pictureURL)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, media.ErrNotFound) {
		s.logger.WarnContext(ctx, "old profile picture not removed", "key", key, "error", err)
	}
}
