package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/logger"
	"github.com/dinebook/dinebook/internal/service"
	"github.com/dinebook/dinebook/internal/transport/api/testutils"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	userService *stubUserService
	jwtSecret   []byte
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) SetupTest() {
	s.userService = &stubUserService{}
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout),
		UserService:  s.userService,
		JWTSecretKey: s.jwtSecret,
	})
}

func (s *AuthHandlerTestSuite) TestRegister() {
	cases := []struct {
		name       string
		payload    string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    `{"login": "gopher", "password": "s3cret-pass"}`,
			wantStatus: http.StatusOK,
		}, {
			name:       "with role",
			payload:    `{"login": "gopher", "password": "s3cret-pass", "role": "owner"}`,
			wantStatus: http.StatusOK,
		}, {
			name:       "duplicate login",
			payload:    `{"login": "gopher", "password": "s3cret-pass"}`,
			serviceErr: domain.ErrDuplicateKey,
			wantStatus: http.StatusConflict,
		}, {
			name:       "short password",
			payload:    `{"login": "gopher", "password": "short"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "unknown role",
			payload:    `{"login": "gopher", "password": "s3cret-pass", "role": "admin"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "long login",
			payload:    fmt.Sprintf(`{"login": %q, "password": "s3cret-pass"}`, strings.Repeat("a", 31)),
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "malformed json",
			payload:    `{"login": `,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			serviceErr := t.serviceErr
			s.userService.registerFn = func(_ context.Context, args service.RegisterUserArgs) (*domain.User, string, error) {
				if serviceErr != nil {
					return nil, "", fmt.Errorf("registering user: %w", serviceErr)
				}
				return &domain.User{ID: 1, Username: args.Username}, "token", nil
			}

			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RegisterRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}, testutils.WithHeader("Content-Type", "application/json"))
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus == http.StatusOK {
				s.Equal("Bearer token", res.Header.Get("Authorization"))
			}
		})
	}
}

func (s *AuthHandlerTestSuite) TestLogin() {
	now := time.Now()
	s.userService.loginFn = func(_ context.Context, args service.LoginUserArgs) (*domain.User, string, error) {
		switch {
		case args.Username == "ghost":
			return nil, "", fmt.Errorf("finding user: %w", domain.ErrRecordNotFound)
		case args.Password != "s3cret-pass":
			return nil, "", fmt.Errorf("logging in user %s: %w", args.Username, domain.ErrPasswordMissMatch)
		default:
			return &domain.User{
				ID:        7,
				CreatedAt: now,
				UpdatedAt: now,
				Username:  args.Username,
				Role:      domain.RoleCustomer,
			}, "token", nil
		}
	}

	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    `{"login": "gopher", "password": "s3cret-pass"}`,
			wantStatus: http.StatusOK,
		}, {
			name:       "unknown user",
			payload:    `{"login": "ghost", "password": "s3cret-pass"}`,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "wrong password",
			payload:    `{"login": "gopher", "password": "wrong-pass"}`,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "missing password",
			payload:    `{"login": "gopher"}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + LoginRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}, testutils.WithHeader("Content-Type", "application/json"))
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus != http.StatusOK {
				return
			}

			s.Equal("Bearer token", res.Header.Get("Authorization"))

			var body struct {
				User UserResponse `json:"user"`
			}
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
			s.EqualValues(7, body.User.ID)
			s.Equal("gopher", body.User.Username)
			s.Equal("customer", body.User.Role)
		})
	}
}
