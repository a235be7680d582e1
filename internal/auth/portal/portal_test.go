package portal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"jamsession/internal/auth/metrics"
	"jamsession/pkg/domain"
	dErrors "jamsession/pkg/domain-errors"
)

type ValidatorSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// portal starts a TLS server with a self-signed certificate, like the real one.
func (s *ValidatorSuite) portal(handler http.HandlerFunc) *Validator {
	srv := httptest.NewTLSServer(handler)
	s.T().Cleanup(srv.Close)
	return New(srv.URL, WithLogger(s.logger))
}

func (s *ValidatorSuite) TestSuccessfulValidation() {
	var (
		method, path, contentType, body string
		user, pass                      string
		hasAuth                         bool
	)
	validator := s.portal(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		user, pass, hasAuth = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		_, _ = w.Write([]byte(`{"total":2,"projects":[{"name":"Acme Corp"},"Globex"]}`))
	})

	result, err := validator.Validate(context.Background(), "jane@example.com", "pa:ss")
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal([]string{"Acme Corp", "Globex"}, domain.ResourceNames(result.Resources))

	s.Equal(http.MethodGet, method)
	s.Equal("/CustomerAPI/GetUserProjects/", path)
	s.Equal("application/json", contentType)
	s.Equal("{}", body)
	s.True(hasAuth)
	s.Equal("jane@example.com", user)
	s.Equal("pa:ss", pass)
}

func (s *ValidatorSuite) TestUnparseableSuccessBodyYieldsNoResources() {
	validator := s.portal(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>ok</html>`))
	})

	result, err := validator.Validate(context.Background(), "jane@example.com", "secret")
	s.Require().NoError(err)
	s.NotNil(result.Resources)
	s.Empty(result.Resources)
}

func (s *ValidatorSuite) TestStatusMapping() {
	tests := []struct {
		name       string
		status     int
		wantCode   dErrors.Code
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, dErrors.CodeAuthFailed, 0},
		{"forbidden", http.StatusForbidden, dErrors.CodeAuthFailed, 0},
		{"bad gateway passes status through", http.StatusBadGateway, dErrors.CodeAPIError, http.StatusBadGateway},
		{"not found passes status through", http.StatusNotFound, dErrors.CodeAPIError, http.StatusNotFound},
		{"no content is not success", http.StatusNoContent, dErrors.CodeAPIError, http.StatusNoContent},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			validator := s.portal(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			result, err := validator.Validate(context.Background(), "jane@example.com", "secret")
			s.Nil(result)
			var domainErr *dErrors.Error
			s.Require().True(errors.As(err, &domainErr))
			s.Equal(tt.wantCode, domainErr.Code)
			s.Equal(tt.wantStatus, domainErr.Status)
		})
	}
}

func (s *ValidatorSuite) TestSlowPortalTimesOut() {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	validator := New(srv.URL, WithLogger(s.logger))
	validator.timeout = 50 * time.Millisecond

	_, err := validator.Validate(context.Background(), "jane@example.com", "secret")
	s.True(dErrors.HasCode(err, dErrors.CodeAPITimeout), "got %v", err)
}

func (s *ValidatorSuite) TestTransportFailures() {
	tests := []struct {
		name string
		err  error
		want dErrors.Code
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), dErrors.CodeConnectionError},
		{"deadline exceeded", context.DeadlineExceeded, dErrors.CodeAPITimeout},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			transport := httpmock.NewMockTransport()
			transport.RegisterNoResponder(httpmock.NewErrorResponder(tt.err))
			validator := New("https://portal.invalid",
				WithHTTPClient(&http.Client{Transport: transport}),
				WithLogger(s.logger),
			)

			_, err := validator.Validate(context.Background(), "jane@example.com", "secret")
			s.True(dErrors.HasCode(err, tt.want), "got %v", err)
			s.NotContains(err.Error(), "dial tcp")
		})
	}
}

func (s *ValidatorSuite) TestMetricsByOutcome() {
	m := metrics.New(prometheus.NewRegistry())
	status := http.StatusOK
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	validator := New(srv.URL, WithLogger(s.logger), WithMetrics(m))

	_, _ = validator.Validate(context.Background(), "a", "b")
	status = http.StatusUnauthorized
	_, _ = validator.Validate(context.Background(), "a", "b")

	s.Equal(1.0, testutil.ToFloat64(m.PortalResults.WithLabelValues("success")))
	s.Equal(1.0, testutil.ToFloat64(m.PortalResults.WithLabelValues(string(dErrors.CodeAuthFailed))))
}
