package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/erpauth/domain"
)

func TestAuthHandlers_SendCodes(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		handler func(h *AuthHandlers) gin.HandlerFunc
		purpose domain.CodePurpose
		stub    func(f *handlerFixture, send func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error))
	}{
		{
			name:    "email verification",
			path:    "/auth/verification/send",
			handler: func(h *AuthHandlers) gin.HandlerFunc { return h.SendVerification },
			purpose: domain.PurposeEmailVerification,
			stub: func(f *handlerFixture, send func(context.Context, string, *domain.ClientContext) (*domain.CodeDispatch, error)) {
				f.verification.SendVerificationCodeFunc = send
			},
		},
		{
			name:    "password reset",
			path:    "/auth/password/code",
			handler: func(h *AuthHandlers) gin.HandlerFunc { return h.SendPasswordResetCode },
			purpose: domain.PurposePasswordReset,
			stub: func(f *handlerFixture, send func(context.Context, string, *domain.ClientContext) (*domain.CodeDispatch, error)) {
				f.verification.SendPasswordResetCodeFunc = send
			},
		},
		{
			name:    "two factor",
			path:    "/auth/2fa/send",
			handler: func(h *AuthHandlers) gin.HandlerFunc { return h.SendTwoFactor },
			purpose: domain.PurposeTwoFactor,
			stub: func(f *handlerFixture, send func(context.Context, string, *domain.ClientContext) (*domain.CodeDispatch, error)) {
				f.verification.SendTwoFactorCodeFunc = send
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			var gotEmail string
			tt.stub(f, func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
				gotEmail = email
				require.NotNil(t, client)
				return &domain.CodeDispatch{Purpose: tt.purpose, ExpiresInMinutes: 10}, nil
			})

			w, body := perform(t, tt.handler(f.handler), http.MethodPost, tt.path, EmailRequest{Email: "user@example.com"}, nil)

			require.Equal(t, http.StatusOK, w.Code, body)
			assert.Equal(t, "user@example.com", gotEmail)
			assert.Equal(t, string(tt.purpose), dataField(t, body, "purpose"))
			assert.Equal(t, float64(10), dataField(t, body, "expires_in_minutes"))
		})
	}
}

func TestAuthHandlers_SendVerificationErrors(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		err            error
		expectedStatus int
	}{
		{"missing email", map[string]string{}, nil, http.StatusBadRequest},
		{"unknown email", EmailRequest{Email: "ghost@example.com"}, domain.ErrEmailNotFound, http.StatusNotFound},
		{"attempt budget spent", EmailRequest{Email: "user@example.com"}, domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"delivery failed", EmailRequest{Email: "user@example.com"}, domain.ErrDeliveryFailed, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.verification.SendVerificationCodeFunc = func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
				return nil, tt.err
			}

			w, body := perform(t, f.handler.SendVerification, http.MethodPost, "/auth/verification/send", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code, body)
			assert.Contains(t, body, "error")
		})
	}
}

func TestAuthHandlers_VerifyCodes(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		err            error
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{
			name:           "accepted",
			body:           CodeRequest{Email: "user@example.com", Code: "123456"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "code too short",
			body:           CodeRequest{Email: "user@example.com", Code: "1234"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no code issued",
			body:           CodeRequest{Email: "user@example.com", Code: "123456"},
			err:            domain.ErrNoCodeFound,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "no verification code found"},
		},
		{
			name:           "expired",
			body:           CodeRequest{Email: "user@example.com", Code: "123456"},
			err:            domain.ErrCodeExpired,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "verification code has expired"},
		},
		{
			name:           "wrong code reports remaining attempts",
			body:           CodeRequest{Email: "user@example.com", Code: "123456"},
			err:            &domain.InvalidCodeError{RemainingAttempts: 4},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"remaining_attempts": float64(4)},
		},
		{
			name:           "too many attempts",
			body:           CodeRequest{Email: "user@example.com", Code: "123456"},
			err:            domain.ErrTooManyAttempts,
			expectedStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, route := range []string{"email", "2fa"} {
				f := newHandlerFixture()
				verify := func(ctx context.Context, email, code string) error { return tt.err }
				f.verification.VerifyCodeFunc = verify
				f.verification.VerifyTwoFactorCodeFunc = verify

				handle := f.handler.VerifyCode
				if route == "2fa" {
					handle = f.handler.VerifyTwoFactor
				}

				w, body := perform(t, handle, http.MethodPost, "/auth/verify", tt.body, nil)

				assert.Equal(t, tt.expectedStatus, w.Code, "%s: %v", route, body)
				for key, expected := range tt.expectedBody {
					assert.Equal(t, expected, body[key], "%s: %s", route, key)
				}
			}
		})
	}
}
