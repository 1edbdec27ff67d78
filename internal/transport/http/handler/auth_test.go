package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockAuthSvc) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockAuthSvc) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	h(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.MatchedBy(func(req domain.RegisterRequest) bool {
		return req.Email == "dana@incial.com" && req.Role == domain.RoleEmployee
	})).Return(&domain.User{UserID: "u1", Email: "dana@incial.com", Role: domain.RoleEmployee}, "a.b.c", nil)

	rec := postJSON(t, NewAuthHandler(svc).Register, map[string]string{
		"name": "Dana", "email": "dana@incial.com", "password": "hunter2hunter2", "role": domain.RoleEmployee,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "a.b.c", env.Token)
	assert.Equal(t, domain.RoleEmployee, env.Role)
	require.NotNil(t, env.User)
	assert.Equal(t, "u1", env.User.UserID)
}

func TestRegister_InvalidBody(t *testing.T) {
	svc := &mockAuthSvc{}
	rec := postJSON(t, NewAuthHandler(svc).Register, map[string]string{
		"name": "Dana", "email": "not-an-email", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "Register")
}

func TestRegister_Duplicate(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, "", domain.ErrConflict)

	rec := postJSON(t, NewAuthHandler(svc).Register, map[string]string{
		"name": "Dana", "email": "dana@incial.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, "", domain.ErrUnauthorized)

	rec := postJSON(t, NewAuthHandler(svc).Login, map[string]string{
		"email": "dana@incial.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPassword(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ForgotPassword", mock.Anything, "dana@incial.com").Return(nil)

	rec := postJSON(t, NewAuthHandler(svc).ForgotPassword, map[string]string{"email": "dana@incial.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OTP sent")
}

func TestForgotPassword_DeliveryFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ForgotPassword", mock.Anything, "dana@incial.com").Return(domain.ErrDelivery)

	rec := postJSON(t, NewAuthHandler(svc).ForgotPassword, map[string]string{"email": "dana@incial.com"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestResetPassword(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, "dana@incial.com", "042137", "new-password-1").Return(nil)

	rec := postJSON(t, NewAuthHandler(svc).ResetPassword, map[string]string{
		"email": "dana@incial.com", "otp": "042137", "new_password": "new-password-1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestResetPassword_ShortCode(t *testing.T) {
	svc := &mockAuthSvc{}
	rec := postJSON(t, NewAuthHandler(svc).ResetPassword, map[string]string{
		"email": "dana@incial.com", "otp": "42", "new_password": "new-password-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "ResetPassword")
}

func TestResetPassword_InvalidCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, "dana@incial.com", "042137", "new-password-1").Return(domain.ErrUnauthorized)

	rec := postJSON(t, NewAuthHandler(svc).ResetPassword, map[string]string{
		"email": "dana@incial.com", "otp": "042137", "new_password": "new-password-1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
