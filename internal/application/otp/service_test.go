package otp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOtpStore struct{ mock.Mock }

func (m *mockOtpStore) Replace(ctx context.Context, otp *domain.Otp) error {
	return m.Called(ctx, otp).Error(0)
}
func (m *mockOtpStore) Claim(ctx context.Context, email, code string, now time.Time) (bool, error) {
	args := m.Called(ctx, email, code, now)
	return args.Bool(0), args.Error(1)
}
func (m *mockOtpStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, msg string) error {
	return m.Called(ctx, to, msg).Error(0)
}

// --- RequestCode ---

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestRequestCode_HappyPath(t *testing.T) {
	repo := &mockOtpStore{}
	ml := &mockMailer{}

	var stored *domain.Otp
	repo.On("Replace", mock.Anything, mock.AnythingOfType("*domain.Otp")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Otp) }).
		Return(nil)
	ml.On("Send", "a@x.com", "Password Reset OTP", mock.MatchedBy(func(body string) bool {
		return len(body) > 0
	})).Return(nil)

	svc := NewService(ServiceDeps{Repo: repo, Mailer: ml})
	code, err := svc.RequestCode(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Regexp(t, sixDigits, code)
	require.NotNil(t, stored)
	assert.Equal(t, code, stored.Code)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.False(t, stored.Verified)
	assert.WithinDuration(t, time.Now().Add(Expiry), stored.ExpiresAt, 5*time.Second)
	repo.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRequestCode_ExpiryUsesInjectedClock(t *testing.T) {
	repo := &mockOtpStore{}
	ml := &mockMailer{}

	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var stored *domain.Otp
	repo.On("Replace", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Otp) }).
		Return(nil)
	ml.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewService(ServiceDeps{Repo: repo, Mailer: ml, Now: func() time.Time { return frozen }})
	_, err := svc.RequestCode(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, frozen.Add(Expiry), stored.ExpiresAt)
}

func TestRequestCode_MailFailure_IsDeliveryError(t *testing.T) {
	repo := &mockOtpStore{}
	ml := &mockMailer{}

	repo.On("Replace", mock.Anything, mock.Anything).Return(nil)
	ml.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp: connection refused"))

	svc := NewService(ServiceDeps{Repo: repo, Mailer: ml})
	_, err := svc.RequestCode(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	assert.Contains(t, err.Error(), "connection refused")
	// The record was persisted before dispatch and is not rolled back.
	repo.AssertExpectations(t)
}

func TestRequestCode_StoreFailure_NoMailSent(t *testing.T) {
	repo := &mockOtpStore{}
	ml := &mockMailer{}

	repo.On("Replace", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := NewService(ServiceDeps{Repo: repo, Mailer: ml})
	_, err := svc.RequestCode(context.Background(), "a@x.com")

	require.Error(t, err)
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCodeWithSMS_SMSFailureIsNotFatal(t *testing.T) {
	repo := &mockOtpStore{}
	ml := &mockMailer{}
	sms := &mockSMSSender{}

	repo.On("Replace", mock.Anything, mock.Anything).Return(nil)
	ml.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "+15550001111", mock.Anything).Return(errors.New("sns unreachable"))

	svc := NewService(ServiceDeps{Repo: repo, Mailer: ml, SMSSender: sms})
	code, err := svc.RequestCodeWithSMS(context.Background(), "a@x.com", "+15550001111")

	require.NoError(t, err)
	assert.Regexp(t, sixDigits, code)
	sms.AssertExpectations(t)
}

// --- VerifyCode ---

func TestVerifyCode_ClaimDecidesResult(t *testing.T) {
	for _, claimed := range []bool{true, false} {
		repo := &mockOtpStore{}
		repo.On("Claim", mock.Anything, "a@x.com", "000042", mock.Anything).Return(claimed, nil)

		svc := NewService(ServiceDeps{Repo: repo, Mailer: &mockMailer{}})
		ok, err := svc.VerifyCode(context.Background(), "a@x.com", "000042")

		require.NoError(t, err)
		assert.Equal(t, claimed, ok)
	}
}

func TestVerifyCode_UsesInjectedClock(t *testing.T) {
	repo := &mockOtpStore{}
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.On("Claim", mock.Anything, "a@x.com", "123456", frozen).Return(true, nil)

	svc := NewService(ServiceDeps{Repo: repo, Mailer: &mockMailer{}, Now: func() time.Time { return frozen }})
	ok, err := svc.VerifyCode(context.Background(), "a@x.com", "123456")

	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}

// --- PurgeExpired ---

func TestPurgeExpired(t *testing.T) {
	repo := &mockOtpStore{}
	repo.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(3), nil)

	svc := NewService(ServiceDeps{Repo: repo, Mailer: &mockMailer{}})
	require.NoError(t, svc.PurgeExpired(context.Background()))
	repo.AssertExpectations(t)
}

func TestPurgeExpired_Error(t *testing.T) {
	repo := &mockOtpStore{}
	repo.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	svc := NewService(ServiceDeps{Repo: repo, Mailer: &mockMailer{}})
	require.Error(t, svc.PurgeExpired(context.Background()))
}

// --- code generation ---

func TestFormatCode_ZeroPads(t *testing.T) {
	assert.Equal(t, "000042", formatCode(42))
	assert.Equal(t, "000000", formatCode(0))
	assert.Equal(t, "999999", formatCode(999999))
}

func TestGenerateCode_AlwaysSixDigits(t *testing.T) {
	svc := NewService(ServiceDeps{Repo: &mockOtpStore{}, Mailer: &mockMailer{}}).(*service)
	for i := 0; i < 200; i++ {
		code, err := svc.generateCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}
