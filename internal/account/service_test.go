package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/token"
)

// captureMailer records the last token handed to it per address, standing in
// for the SMTP relay so flows can be driven end to end.
type captureMailer struct {
	verifyTokens map[string]string
	resetTokens  map[string]string
	failNext     bool
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		verifyTokens: make(map[string]string),
		resetTokens:  make(map[string]string),
	}
}

func (m *captureMailer) SendVerification(_ context.Context, email, token string) error {
	if m.failNext {
		m.failNext = false
		return assert.AnError
	}
	m.verifyTokens[email] = token
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, token string) error {
	if m.failNext {
		m.failNext = false
		return assert.AnError
	}
	m.resetTokens[email] = token
	return nil
}

func newTestService(t *testing.T) (*Service, *captureMailer) {
	t.Helper()
	mail := newCaptureMailer()
	engine := token.NewEngine([]byte("test-secret"), 30*time.Minute, time.Hour, 15*time.Minute)
	svc := NewService(NewMemoryRepository(), engine, mail, logging.Discard())
	return svc, mail
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	assert.False(t, user.IsAdmin)
	assert.NotEmpty(t, mail.verifyTokens["a@x.com"])

	_, err = svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	svc, mail := newTestService(t)
	mail.failNext = true

	user, err := svc.Register(context.Background(), Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err, "registration must succeed even when delivery fails")
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, mail.verifyTokens["a@x.com"])
}

func TestLoginGatedOnVerification(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	require.NoError(t, svc.VerifyEmail(ctx, mail.verifyTokens["a@x.com"]))

	access, err := svc.Login(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	resolved, err := svc.CurrentUser(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.True(t, resolved.IsVerified)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, mail.verifyTokens["a@x.com"]))

	// Wrong password and unknown email must be indistinguishable.
	_, wrongPw := svc.Login(ctx, Credentials{Email: "a@x.com", Password: "nope"})
	_, unknown := svc.Login(ctx, Credentials{Email: "b@x.com", Password: "pw1"})
	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
}

func TestVerifyEmailTokenFailuresNormalized(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, "garbage"), ErrInvalidToken)

	// A reset token must not verify an email, and the caller cannot tell
	// a purpose mismatch from a bad signature.
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	assert.ErrorIs(t, svc.VerifyEmail(ctx, mail.resetTokens["a@x.com"]), ErrInvalidToken)

	// Expired verification tokens collapse to the same error.
	expired := NewService(NewMemoryRepository(), token.NewEngine([]byte("test-secret"), time.Minute, -time.Minute, time.Minute), newCaptureMailer(), logging.Discard())
	_, err = expired.Register(ctx, Credentials{Email: "b@x.com", Password: "pw"})
	require.NoError(t, err)
	// The minted token is already past its TTL.
	mail2 := expired.mail.(*captureMailer)
	assert.ErrorIs(t, expired.VerifyEmail(ctx, mail2.verifyTokens["b@x.com"]), ErrInvalidToken)
}

func TestVerifyEmailIdempotent(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	signed := mail.verifyTokens["a@x.com"]
	require.NoError(t, svc.VerifyEmail(ctx, signed))
	// The same still-valid token may be presented again; verification is
	// monotonic so this succeeds silently.
	require.NoError(t, svc.VerifyEmail(ctx, signed))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetPasswordFlow(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "old-pw"})
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, mail.verifyTokens["a@x.com"]))
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	reset := mail.resetTokens["a@x.com"]
	require.NotEmpty(t, reset)

	// Mismatched confirmation writes nothing; the old password still works.
	err = svc.ResetPassword(ctx, reset, "new-pw", "other-pw")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	_, err = svc.Login(ctx, Credentials{Email: "a@x.com", Password: "old-pw"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, reset, "new-pw", "new-pw"))

	_, err = svc.Login(ctx, Credentials{Email: "a@x.com", Password: "old-pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, Credentials{Email: "a@x.com", Password: "new-pw"})
	require.NoError(t, err)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "garbage", "a", "a"), ErrInvalidToken)
	// A verification token is not a reset token.
	assert.ErrorIs(t, svc.ResetPassword(ctx, mail.verifyTokens["a@x.com"], "a", "a"), ErrInvalidToken)
}

func TestCurrentUserRejectsOtherPurposes(t *testing.T) {
	svc, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	// Neither the verification token nor the reset token may act as a
	// bearer credential.
	_, err = svc.CurrentUser(ctx, mail.verifyTokens["a@x.com"])
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.CurrentUser(ctx, mail.resetTokens["a@x.com"])
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateAdminIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, created, err := svc.CreateAdmin(ctx, Credentials{Email: "root@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.IsVerified, "admin skips the verification flow")

	// The second call must not create a new row and reports the first
	// admin's email, regardless of the requested one.
	again, created, err := svc.CreateAdmin(ctx, Credentials{Email: "other@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)
	assert.Equal(t, "root@x.com", again.Email)

	// The admin can log in straight away.
	_, err = svc.Login(ctx, Credentials{Email: "root@x.com", Password: "pw"})
	require.NoError(t, err)
}
