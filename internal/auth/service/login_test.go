package service

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"jamsession/internal/auth/accessgate"
	"jamsession/internal/auth/models"
	rlmodels "jamsession/internal/ratelimit/models"
	"jamsession/internal/auth/ports"
	jwttoken "jamsession/internal/jwt_token"
	"jamsession/pkg/domain"
	dErrors "jamsession/pkg/domain-errors"
)

var granted = accessgate.Decision{Allowed: true, Reason: accessgate.ReasonGranted, Message: "Access granted"}

func (s *ServiceSuite) TestLoginSuccess() {
	resources := []domain.Resource{domain.StringResource("Acme Corp"), domain.StringResource("Globex")}

	gomock.InOrder(
		s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil),
		s.mockGate.EXPECT().CheckAccess(gomock.Any(), "jane@example.com").Return(granted),
		s.mockValidator.EXPECT().Validate(gomock.Any(), "jane@example.com", "pa:ss").
			Return(&models.AuthorizationResult{Success: true, Resources: resources}, nil),
		s.mockLimiter.EXPECT().RecordSuccess(gomock.Any(), clientIP).Return(nil),
	)

	result, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "pa:ss"), clientIP)
	s.Require().NoError(err)

	s.Equal("jane@example.com", result.User.Username)
	s.Equal(domain.RoleInstaller, result.User.Role)
	s.Equal(resources, result.User.Projects)
	s.Len(result.CSRFToken, 64)
	s.Regexp("^[0-9a-f]+$", result.CSRFToken)
	s.Equal(s.now.Add(8*time.Hour), result.ExpiresAt)

	claims, err := jwttoken.Verify(result.Token, testSecret, s.now)
	s.Require().NoError(err)
	s.Equal("jane@example.com", claims.Subject)
	s.Equal(result.CSRFToken, claims.CSRF)
	s.Equal(s.now.UnixMilli(), claims.IssuedAt)
	s.Equal(s.now.Add(8*time.Hour).UnixMilli(), claims.ExpiresAt)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues("success")))
}

func (s *ServiceSuite) TestLoginMintsFreshCSRFTokens() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil).Times(2)
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), gomock.Any()).Return(granted).Times(2)
	s.mockValidator.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.AuthorizationResult{Success: true, Resources: []domain.Resource{}}, nil).Times(2)
	s.mockLimiter.EXPECT().RecordSuccess(gomock.Any(), clientIP).Return(nil).Times(2)

	first, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	s.Require().NoError(err)
	second, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	s.Require().NoError(err)
	s.NotEqual(first.CSRFToken, second.CSRFToken)
}

func (s *ServiceSuite) TestLoginAssignsAdminRole() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil)
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), "Ops@Data-Jam.com").Return(granted)
	s.mockValidator.EXPECT().Validate(gomock.Any(), "Ops@Data-Jam.com", "x").
		Return(&models.AuthorizationResult{Success: true, Resources: []domain.Resource{}}, nil)
	s.mockLimiter.EXPECT().RecordSuccess(gomock.Any(), clientIP).Return(nil)

	result, err := s.service.Login(s.ctx(), loginRequest("Ops@Data-Jam.com", "x"), clientIP)
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, result.User.Role)
}

func (s *ServiceSuite) TestLoginRejectsBadCredentialsFormat() {
	tests := []struct {
		name string
		req  *models.LoginRequest
		code dErrors.Code
	}{
		{"missing auth", &models.LoginRequest{}, dErrors.CodeMissingAuth},
		{"not base64", &models.LoginRequest{Auth: "!!!"}, dErrors.CodeInvalidAuth},
		{"no colon", &models.LoginRequest{Auth: base64.StdEncoding.EncodeToString([]byte("janesecret"))}, dErrors.CodeInvalidAuth},
		{"empty identifier", loginRequest("", "secret"), dErrors.CodeInvalidAuth},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Login(s.ctx(), tt.req, clientIP)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestLoginBlockedByLockout() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{
		Blocked:    true,
		RetryAfter: 14*time.Minute + 30*time.Second,
		Message:    "Too many failed login attempts. Please try again in 15 minutes.",
	}, nil)

	_, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	s.Equal("Too many failed login attempts. Please try again in 15 minutes.", err.Error())

	var lockout *rlmodels.LockoutError
	s.Require().True(errors.As(err, &lockout))
	s.Equal(14*time.Minute+30*time.Second, lockout.RetryAfter)
	s.Equal(870, lockout.RetryAfterSeconds())
}

func (s *ServiceSuite) TestLoginGateDenialSkipsValidator() {
	denied := accessgate.Decision{Allowed: false, Reason: accessgate.ReasonTimeout, Message: "Access verification timed out. Please try again."}
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil)
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), "jane@example.com").Return(denied)
	s.mockLimiter.EXPECT().RecordFailure(gomock.Any(), clientIP).Return(nil)
	s.mockValidator.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))

	var accessErr *models.AccessDeniedError
	s.Require().True(errors.As(err, &accessErr))
	s.Equal("timeout", accessErr.Reason)
	s.Equal(denied.Message, accessErr.Message)
}

func (s *ServiceSuite) TestLoginRejectedCredentialsCountAsFailure() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil)
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), "jane@example.com").Return(granted)
	s.mockValidator.EXPECT().Validate(gomock.Any(), "jane@example.com", "wrong").
		Return(nil, dErrors.New(dErrors.CodeAuthFailed, "Invalid username or password"))
	s.mockLimiter.EXPECT().RecordFailure(gomock.Any(), clientIP).Return(nil)

	_, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "wrong"), clientIP)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthFailed))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues("AUTH_FAILED")))
}

func (s *ServiceSuite) TestLoginUpstreamErrorsPassThroughWithoutCounting() {
	tests := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"timeout", dErrors.New(dErrors.CodeAPITimeout, "Authentication server timeout. Please try again."), dErrors.CodeAPITimeout},
		{"api error", dErrors.NewWithStatus(dErrors.CodeAPIError, http.StatusBadGateway, "Authentication service error. Please try again."), dErrors.CodeAPIError},
		{"connection", dErrors.New(dErrors.CodeConnectionError, "Failed to connect"), dErrors.CodeConnectionError},
		{"unexpected", errors.New("boom"), dErrors.CodeServerError},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil)
			s.mockGate.EXPECT().CheckAccess(gomock.Any(), gomock.Any()).Return(granted)
			s.mockValidator.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tt.err)
			s.mockLimiter.EXPECT().RecordFailure(gomock.Any(), gomock.Any()).Times(0)

			_, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestLoginAPIErrorKeepsUpstreamStatus() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil)
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), gomock.Any()).Return(granted)
	s.mockValidator.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.NewWithStatus(dErrors.CodeAPIError, http.StatusServiceUnavailable, "Authentication service error. Please try again."))

	_, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	var domainErr *dErrors.Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal(http.StatusServiceUnavailable, domainErr.Status)
}

func (s *ServiceSuite) TestLoginFailsClosedWhenLimiterErrors() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).
		Return(nil, dErrors.Wrap(errors.New("redis: connection refused"), dErrors.CodeInternal, "failed to get auth lockout record"))
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	s.True(dErrors.HasCode(err, dErrors.CodeServerError))
	s.NotContains(err.Error(), "redis")
}

func (s *ServiceSuite) TestLoginIgnoresLimiterRecordErrors() {
	s.mockLimiter.EXPECT().CheckLockout(gomock.Any(), clientIP).Return(&ports.LockoutStatus{}, nil)
	s.mockGate.EXPECT().CheckAccess(gomock.Any(), gomock.Any()).Return(granted)
	s.mockValidator.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.AuthorizationResult{Success: true, Resources: []domain.Resource{}}, nil)
	s.mockLimiter.EXPECT().RecordSuccess(gomock.Any(), clientIP).Return(errors.New("redis down"))

	result, err := s.service.Login(s.ctx(), loginRequest("jane@example.com", "x"), clientIP)
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
}
