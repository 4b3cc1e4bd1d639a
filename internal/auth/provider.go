// Package auth is the local identity provider: password sign-up and
// sign-in, JWT session tokens backed by session rows, and password resets.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"crimson-db/internal/catalog"
	"crimson-db/internal/db"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// MinimumPasswordLength is the minimum length for user passwords.
	MinimumPasswordLength = 8
	issuer                = "crimson-db"
)

var (
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters long", MinimumPasswordLength)
	ErrEmailTaken         = errors.New("an account with that email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
	ErrInvalidResetToken  = errors.New("password reset link is invalid or has expired")
)

// Claims are the JWT claims of a session token. The registered ID is the
// session row ID and the subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is a signed-in session handed back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal catalog.Principal
}

type Options struct {
	Secret     []byte
	SessionTTL time.Duration
	ResetTTL   time.Duration
	// ResetURL is the page reset links point at; the token is appended as ?token=.
	ResetURL string
	Mailer   Mailer
	Logger   *slog.Logger
}

type Provider struct {
	conn     *gorm.DB
	opts     Options
	validate *validator.Validate
	now      func() time.Time
}

func NewProvider(conn *gorm.DB, opts Options) *Provider {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Mailer == nil {
		opts.Mailer = LogMailer{Logger: opts.Logger}
	}
	return &Provider{
		conn:     conn,
		opts:     opts,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a copy of p that runs its queries on tx.
func (p *Provider) WithTx(tx *gorm.DB) *Provider {
	clone := *p
	clone.conn = tx
	return &clone
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (catalog.Principal, error) {
	email, err := p.normalizeEmail(email)
	if err != nil {
		return catalog.Principal{}, err
	}
	if len(password) < MinimumPasswordLength {
		return catalog.Principal{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return catalog.Principal{}, fmt.Errorf("hash password: %w", err)
	}
	identity := db.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.conn.WithContext(ctx).Create(&identity).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return catalog.Principal{}, ErrEmailTaken
		}
		return catalog.Principal{}, err
	}
	return catalog.Principal{UserID: identity.ID, Email: identity.Email}, nil
}

// SignIn checks the password and opens a new session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	var identity db.Identity
	if err := p.conn.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		if db.IsNotFound(err) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	now := p.now()
	record := db.Session{
		ID:        uuid.NewString(),
		UserID:    identity.ID,
		ExpiresAt: now.Add(p.opts.SessionTTL),
	}
	if err := p.conn.WithContext(ctx).Create(&record).Error; err != nil {
		return Session{}, err
	}
	token, err := p.sign(identity, record, now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: record.ExpiresAt,
		Principal: catalog.Principal{UserID: identity.ID, Email: identity.Email},
	}, nil
}

func (p *Provider) sign(identity db.Identity, record db.Session, now time.Time) (string, error) {
	claims := &Claims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID,
			Subject:   identity.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.opts.Secret)
}

func (p *Provider) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

// Authenticate resolves a session token to its principal. The token must
// verify and its session row must still be live.
func (p *Provider) Authenticate(ctx context.Context, token string) (catalog.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return catalog.Principal{}, ErrNoSession
	}
	claims, err := p.parse(token)
	if err != nil {
		return catalog.Principal{}, err
	}
	var record db.Session
	err = p.conn.WithContext(ctx).
		Where("id = ? AND user_id = ? AND expires_at > ?", claims.ID, claims.Subject, p.now()).
		First(&record).Error
	if err != nil {
		if db.IsNotFound(err) {
			return catalog.Principal{}, ErrNoSession
		}
		return catalog.Principal{}, err
	}
	var identity db.Identity
	if err := p.conn.WithContext(ctx).Where("id = ?", record.UserID).First(&identity).Error; err != nil {
		if db.IsNotFound(err) {
			return catalog.Principal{}, ErrNoSession
		}
		return catalog.Principal{}, err
	}
	return catalog.Principal{UserID: identity.ID, Email: identity.Email}, nil
}

// SignOut ends the session behind token. Unknown tokens are ignored.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(strings.TrimSpace(token))
	if err != nil {
		return nil
	}
	return p.conn.WithContext(ctx).Where("id = ?", claims.ID).Delete(&db.Session{}).Error
}

// RequestPasswordReset mails a single-use reset link when the email belongs
// to an account. Unknown emails succeed silently.
func (p *Provider) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrInvalidEmail
	}
	var identity db.Identity
	if err := p.conn.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	reset := db.PasswordReset{
		TokenHash: hashToken(token),
		UserID:    identity.ID,
		ExpiresAt: p.now().Add(p.opts.ResetTTL),
	}
	if err := p.conn.WithContext(ctx).Create(&reset).Error; err != nil {
		return err
	}
	return p.opts.Mailer.SendPasswordReset(ctx, identity.Email, p.resetLink(token))
}

// ResetPassword consumes a reset token, sets the new password and ends
// every session of the account.
func (p *Provider) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	if len(password) < MinimumPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset db.PasswordReset
		if err := tx.Where("token_hash = ?", hashToken(token)).First(&reset).Error; err != nil {
			if db.IsNotFound(err) {
				return ErrInvalidResetToken
			}
			return err
		}
		if !reset.ExpiresAt.After(p.now()) {
			return ErrInvalidResetToken
		}
		if err := tx.Delete(&reset).Error; err != nil {
			return err
		}
		result := tx.Model(&db.Identity{}).Where("id = ?", reset.UserID).Update("password_hash", string(hash))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidResetToken
		}
		return tx.Where("user_id = ?", reset.UserID).Delete(&db.Session{}).Error
	})
}

func (p *Provider) ChangeEmail(ctx context.Context, userID, email string) error {
	return p.ChangeEmailTx(ctx, p.conn, userID, email)
}

// ChangeEmailTx updates the sign-in email on tx, so a caller can commit it
// together with its own writes.
func (p *Provider) ChangeEmailTx(ctx context.Context, tx *gorm.DB, userID, email string) error {
	email, err := p.normalizeEmail(email)
	if err != nil {
		return err
	}
	result := tx.WithContext(ctx).Model(&db.Identity{}).Where("id = ?", userID).Update("email", email)
	if result.Error != nil {
		if db.IsUniqueViolation(result.Error) {
			return ErrEmailTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoSession
	}
	return nil
}

func (p *Provider) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := p.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (p *Provider) resetLink(token string) string {
	u, err := url.Parse(p.opts.ResetURL)
	if err != nil || p.opts.ResetURL == "" {
		return "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
