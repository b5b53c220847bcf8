// Package account implements the credential and lifecycle engine: how
// accounts are registered, verified, logged into, and recovered, and how the
// purpose-scoped tokens gate each transition.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/authgate/authgate/internal/mailer"
	"github.com/authgate/authgate/internal/password"
	"github.com/authgate/authgate/internal/token"
)

// Service orchestrates the account lifecycle. Verification is monotonic: an
// account moves from unverified to verified exactly once and never back.
type Service struct {
	repo   Repository
	tokens *token.Engine
	mail   mailer.Mailer
	logger *slog.Logger
}

// NewService wires the engine to its storage, token and mail collaborators.
func NewService(repo Repository, tokens *token.Engine, mail mailer.Mailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, mail: mail, logger: logger}
}

// Register creates an unverified account and mails out a verification link.
// Mail delivery is best effort; its failure is logged and the registration
// still succeeds. A concurrent registration of the same email is resolved by
// the storage unique constraint and reported as ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	if _, err := s.repo.FindByEmail(ctx, creds.Email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hash, err := password.Hash(creds.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user, err := s.repo.Create(ctx, User{
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, err
	}

	verifyToken, err := s.tokens.Issue(formatID(user.ID), token.PurposeVerifyEmail)
	if err != nil {
		s.logger.Error("issue verification token", "email", user.Email, "error", err)
		return user, nil
	}
	if err := s.mail.SendVerification(ctx, user.Email, verifyToken); err != nil {
		s.logger.Error("send verification mail", "email", user.Email, "error", err)
	}

	return user, nil
}

// Login checks the credentials and returns a bearer access token. An unknown
// email and a wrong password produce the same ErrInvalidCredentials. A
// correct password on an unverified account fails with ErrEmailNotVerified.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, error) {
	user, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !password.Verify(creds.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", ErrEmailNotVerified
	}

	return s.tokens.Issue(formatID(user.ID), token.PurposeAccess)
}

// VerifyEmail consumes a verification token and flips the account to
// verified. Any token failure is reported as ErrInvalidToken without
// distinguishing the cause. Re-presenting a still-valid token succeeds;
// verification cannot be undone.
func (s *Service) VerifyEmail(ctx context.Context, signed string) error {
	subject, err := s.tokens.Validate(signed, token.PurposeVerifyEmail)
	if err != nil {
		return ErrInvalidToken
	}
	id, err := parseID(subject)
	if err != nil {
		return ErrInvalidToken
	}

	return s.repo.MarkVerified(ctx, id)
}

// ForgotPassword mails a reset link for the account. The reset token is bound
// to the email rather than the id, matching the reset flow's lookup-by-email.
// An unknown email is reported as ErrUserNotFound.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.tokens.Issue(user.Email, token.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.mail.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		s.logger.Error("send password reset mail", "email", user.Email, "error", err)
	}

	return nil
}

// ResetPassword consumes a reset token and overwrites the stored hash. The
// confirmation check runs after the token and user are confirmed valid and
// before any write, so a mismatch never leaves a partial update behind.
func (s *Service) ResetPassword(ctx context.Context, signed, newPassword, confirmPassword string) error {
	subject, err := s.tokens.Validate(signed, token.PurposeResetPassword)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.repo.FindByEmail(ctx, subject)
	if err != nil {
		return err
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdatePasswordHash(ctx, user.ID, hash)
}

// CurrentUser resolves a bearer access token to its account. Every token
// failure, including a token minted for another purpose, collapses to
// ErrInvalidToken; a valid token for a deleted account yields ErrUserNotFound.
func (s *Service) CurrentUser(ctx context.Context, signed string) (User, error) {
	subject, err := s.tokens.Validate(signed, token.PurposeAccess)
	if err != nil {
		return User{}, ErrInvalidToken
	}
	id, err := parseID(subject)
	if err != nil {
		return User{}, ErrInvalidToken
	}

	return s.repo.FindByID(ctx, id)
}

// CreateAdmin provisions the single privileged account. If an admin already
// exists it is returned unchanged with created=false. The admin skips the
// verification flow by design.
func (s *Service) CreateAdmin(ctx context.Context, creds Credentials) (User, bool, error) {
	existing, err := s.repo.FindAdmin(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, false, err
	}

	hash, err := password.Hash(creds.Password)
	if err != nil {
		return User{}, false, err
	}

	now := time.Now().UTC()
	user, err := s.repo.Create(ctx, User{
		Email:        creds.Email,
		PasswordHash: hash,
		IsVerified:   true,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(subject string) (int64, error) {
	return strconv.ParseInt(subject, 10, 64)
}
