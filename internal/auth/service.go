package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/restcontacts/contacts-api/internal/models"
)

// UserDirectory is the persistence boundary the auth core drives. It is
// implemented by the user package on top of gorm; tests substitute an
// in-memory fake. Lookup misses are reported as ErrNotFound.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, username, email, passwordDigest string) (*models.User, error)

	// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, userID uint, token *string) error

	// RotateRefreshToken replaces old with new only if old is still the
	// stored value, and reports whether the swap happened. The conditional
	// write is what keeps a refresh token single-use under concurrency.
	RotateRefreshToken(ctx context.Context, userID uint, old, new string) (bool, error)

	UpdateResetToken(ctx context.Context, userID uint, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID uint, passwordDigest string) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service mints and verifies the four token kinds and runs the credential
// flows on top of the codec, hasher and user directory. All configuration
// is fixed at construction; the only mutable state is the per-principal
// lock table guarding refresh rotation.
type Service struct {
	codec  *Codec
	hasher Hasher
	users  UserDirectory

	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(codec *Codec, hasher Hasher, users UserDirectory, accessTTL, refreshTTL, emailTTL time.Duration) *Service {
	return &Service{
		codec:      codec,
		hasher:     hasher,
		users:      users,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *Service) issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	now := time.Now()
	return s.codec.Encode(Claims{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Scope:     scope,
	})
}

func (s *Service) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, ScopeAccess, s.accessTTL)
}

func (s *Service) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, ScopeRefresh, s.refreshTTL)
}

func (s *Service) IssueEmailToken(subject string) (string, error) {
	return s.issue(subject, ScopeEmail, s.emailTTL)
}

// IssueResetToken reuses the email scope; reset tokens are additionally
// matched against the stored per-user value before they are honored.
func (s *Service) IssueResetToken(subject string) (string, error) {
	return s.issue(subject, ScopeEmail, s.emailTTL)
}

func (s *Service) decodeScoped(token string, want Scope) (Claims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return Claims{}, err
	}
	switch claims.Scope {
	case ScopeAccess, ScopeRefresh, ScopeEmail:
		if claims.Scope != want {
			return Claims{}, ErrWrongScope
		}
	default:
		return Claims{}, ErrWrongScope
	}
	return claims, nil
}

// VerifyAccessToken returns the subject email of a valid access token.
func (s *Service) VerifyAccessToken(token string) (string, error) {
	claims, err := s.decodeScoped(token, ScopeAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// VerifyEmailToken returns the subject email of a valid email-scoped token.
func (s *Service) VerifyEmailToken(token string) (string, error) {
	claims, err := s.decodeScoped(token, ScopeEmail)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Authenticate resolves a bearer access token to its principal.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	email, err := s.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}
	return s.users.GetByEmail(ctx, email)
}

// Register creates an unconfirmed account with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, username, email, digest)
}

// LoginExternal mints a pair for an identity vouched for by an OAuth
// provider. First sight of the email creates the account already confirmed;
// the provider has verified the address.
func (s *Service) LoginExternal(ctx context.Context, username, email string) (*models.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		u, err = s.users.Create(ctx, username, email, "")
		if err != nil {
			return nil, TokenPair{}, err
		}
		if err := s.users.ConfirmEmail(ctx, u.Email); err != nil {
			return nil, TokenPair{}, err
		}
		u.Confirmed = true
	} else if err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.mintPair(u.Email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.users.UpdateRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return nil, TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return u, pair, nil
}

// Login verifies credentials and mints a fresh access+refresh pair. The new
// refresh token overwrites whatever was stored, so a login from a second
// device invalidates the first device's refresh token.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	if !u.Confirmed {
		return TokenPair{}, ErrUnconfirmed
	}
	if !s.hasher.Verify(password, u.Password) {
		return TokenPair{}, ErrBadCredentials
	}

	pair, err := s.mintPair(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.UpdateRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Refresh rotates a presented refresh token into a new access+refresh pair.
// The presented token must equal the stored one byte for byte; a mismatch is
// treated as reuse of a rotated-out token, so the stored token is cleared
// and the caller must log in again. Rotation is serialized per principal and
// backed by a conditional update, so of two concurrent refreshes with the
// same token exactly one wins.
func (s *Service) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	claims, err := s.decodeScoped(presented, ScopeRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	lock := s.lockFor(claims.Subject)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, err
	}
	if u.RefreshToken == nil || *u.RefreshToken != presented {
		_ = s.users.UpdateRefreshToken(ctx, u.ID, nil)
		return TokenPair{}, ErrTokenMismatch
	}

	pair, err := s.mintPair(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	rotated, err := s.users.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !rotated {
		return TokenPair{}, ErrTokenMismatch
	}
	return pair, nil
}

// Logout clears the stored refresh token so the pair minted at login can no
// longer be rotated.
func (s *Service) Logout(ctx context.Context, userID uint) error {
	return s.users.UpdateRefreshToken(ctx, userID, nil)
}

// ConfirmEmail flips the principal's confirmed flag exactly once. Replaying
// a confirmation token is a no-op reported via alreadyConfirmed.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	email, err := s.VerifyEmailToken(token)
	if err != nil {
		return false, err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if u.Confirmed {
		return true, nil
	}
	return false, s.users.ConfirmEmail(ctx, email)
}

// RequestPasswordReset mints a reset token and stores it verbatim on the
// principal, overwriting any earlier one.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token, err := s.IssueResetToken(u.Email)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateResetToken(ctx, u.ID, &token); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token: the token must decode and equal the
// stored value, and the new/confirm pair must match, before any mutation.
// On success the stored token is cleared, making it single-use.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	email, err := s.VerifyEmailToken(token)
	if err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.PasswordResetToken == nil || *u.PasswordResetToken != token {
		return ErrTokenMismatch
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, digest); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return s.users.UpdateResetToken(ctx, u.ID, nil)
}

func (s *Service) mintPair(email string) (TokenPair, error) {
	access, err := s.IssueAccessToken(email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) lockFor(email string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[email]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[email] = lock
	}
	return lock
}
