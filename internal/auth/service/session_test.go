package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	jwttoken "jamsession/internal/jwt_token"
	"jamsession/pkg/domain"
	dErrors "jamsession/pkg/domain-errors"
)

func (s *ServiceSuite) mint(expiresIn time.Duration, csrf string) string {
	token, err := jwttoken.Mint(jwttoken.Claims{
		Subject:   "jane@example.com",
		Role:      domain.RoleInstaller,
		Projects:  []domain.Resource{domain.StringResource("Acme Corp")},
		CSRF:      csrf,
		IssuedAt:  s.now.UnixMilli(),
		ExpiresAt: s.now.Add(expiresIn).UnixMilli(),
	}, testSecret)
	s.Require().NoError(err)
	return token
}

func (s *ServiceSuite) TestValidate() {
	s.Run("valid token rebuilds session", func() {
		result, err := s.service.Validate(s.ctx(), s.mint(time.Hour, "abc123"))
		s.Require().NoError(err)
		s.Equal("jane@example.com", result.User.Username)
		s.Equal([]string{"Acme Corp"}, domain.ResourceNames(result.User.Projects))
		s.Equal("abc123", result.CSRFToken)
		s.Equal(s.now.Add(time.Hour), result.ExpiresAt)
	})

	s.Run("missing token", func() {
		_, err := s.service.Validate(s.ctx(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("No session found", err.Error())
	})

	s.Run("expired token", func() {
		_, err := s.service.Validate(s.ctx(), s.mint(-time.Second, "abc123"))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("Token expired", err.Error())
		s.Equal(jwttoken.ReasonExpired, jwttoken.ReasonOf(err))
	})

	s.Run("token signed with another secret", func() {
		token, err := jwttoken.Mint(jwttoken.Claims{Subject: "x", ExpiresAt: s.now.Add(time.Hour).UnixMilli()}, []byte("other"))
		s.Require().NoError(err)
		_, err = s.service.Validate(s.ctx(), token)
		s.Equal("Invalid signature", err.Error())
	})

	s.Run("malformed token", func() {
		_, err := s.service.Validate(s.ctx(), "not-a-token")
		s.Equal("Invalid token format", err.Error())
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionValidations.WithLabelValues("valid")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionValidations.WithLabelValues("expired")))
}

func (s *ServiceSuite) TestVerifyCSRF() {
	token := s.mint(time.Hour, "abc123")

	tests := []struct {
		name  string
		token string
		csrf  string
		code  dErrors.Code
	}{
		{"missing token", "", "abc123", dErrors.CodeBadRequest},
		{"missing csrf", token, "", dErrors.CodeBadRequest},
		{"invalid session", "a.b.c", "abc123", dErrors.CodeUnauthorized},
		{"expired session", s.mint(-time.Second, "abc123"), "abc123", dErrors.CodeUnauthorized},
		{"mismatch", token, "abc124", dErrors.CodeForbidden},
		{"prefix is a mismatch", token, "abc", dErrors.CodeForbidden},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.service.VerifyCSRF(s.ctx(), tt.token, tt.csrf)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}

	s.Run("match", func() {
		s.NoError(s.service.VerifyCSRF(s.ctx(), token, "abc123"))
	})
}
