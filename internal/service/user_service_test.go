package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/suite"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/testutils"
	"github.com/dinebook/dinebook/internal/tokens"
)

var testJWTSecret = []byte("test-secret")

type UserServiceTestSuite struct {
	suite.Suite
	store   *testutils.Store
	uow     *testutils.MemoryUOW
	service *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.store = testutils.NewStore()
	s.uow = testutils.NewMemoryUOW(s.store)

	var err error
	s.service, err = NewUserService(s.uow, testJWTSecret)
	s.Require().NoError(err)
}

func (s *UserServiceTestSuite) TestRegister() {
	user, token, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "alice",
		Password: "s3cret-pass",
	})
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.Equal(domain.RoleCustomer, user.Role)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte("s3cret-pass")))

	claims, err := tokens.ValidateUserJWT(token, testJWTSecret)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.ID)
	s.Equal(domain.RoleCustomer, claims.Role)
}

func (s *UserServiceTestSuite) TestRegisterWithRole() {
	user, _, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "bob",
		Password: "s3cret-pass",
		Role:     domain.RoleOwner,
	})
	s.Require().NoError(err)
	s.Equal(domain.RoleOwner, user.Role)
}

func (s *UserServiceTestSuite) TestRegisterDuplicateUsername() {
	_, _, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "alice",
		Password: "s3cret-pass",
	})
	s.Require().NoError(err)

	_, _, err = s.service.Register(context.Background(), RegisterUserArgs{
		Username: "alice",
		Password: "other-pass",
	})
	s.ErrorIs(err, domain.ErrDuplicateKey)
	s.Len(s.store.Users, 1)
}

func (s *UserServiceTestSuite) TestLogin() {
	registered, _, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "alice",
		Password: "s3cret-pass",
	})
	s.Require().NoError(err)

	user, token, err := s.service.Login(context.Background(), LoginUserArgs{
		Username: "alice",
		Password: "s3cret-pass",
	})
	s.Require().NoError(err)
	s.Equal(registered.ID, user.ID)

	claims, err := tokens.ValidateUserJWT(token, testJWTSecret)
	s.Require().NoError(err)
	s.Equal(registered.ID, claims.ID)
}

func (s *UserServiceTestSuite) TestLoginWrongPassword() {
	_, _, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "alice",
		Password: "s3cret-pass",
	})
	s.Require().NoError(err)

	_, _, err = s.service.Login(context.Background(), LoginUserArgs{
		Username: "alice",
		Password: "wrong",
	})
	s.ErrorIs(err, domain.ErrPasswordMissMatch)
}

func (s *UserServiceTestSuite) TestLoginUnknownUser() {
	_, _, err := s.service.Login(context.Background(), LoginUserArgs{
		Username: "ghost",
		Password: "whatever",
	})
	s.ErrorIs(err, domain.ErrRecordNotFound)
}
