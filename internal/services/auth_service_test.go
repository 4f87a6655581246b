// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	cfg := newTestConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	suite.db = newTestDB(suite.T())
	suite.service = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) register(email, username string) *AuthResponse {
	resp, err := suite.service.Register(&RegisterRequest{
		Email:    email,
		Password: "Sup3rSecret",
		Username: username,
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthServiceTestSuite) TestRegister() {
	resp := suite.register("new@example.com", "newcomer")

	suite.NotEmpty(resp.AccessToken)
	suite.NotEmpty(resp.RefreshToken)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal("new@example.com", resp.User.Email)
	suite.Equal("EUR", resp.User.Preferences["currency"])

	claims, err := utils.ValidateJWT(resp.AccessToken)
	suite.NoError(err)
	suite.Equal(resp.User.ID, claims.UserID)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	suite.register("dup@example.com", "first")

	_, err := suite.service.Register(&RegisterRequest{
		Email:    "dup@example.com",
		Password: "Sup3rSecret",
		Username: "second",
	})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateUsername() {
	suite.register("first@example.com", "taken")

	_, err := suite.service.Register(&RegisterRequest{
		Email:    "second@example.com",
		Password: "Sup3rSecret",
		Username: "taken",
	})
	suite.ErrorIs(err, ErrUsernameTaken)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	suite.register("login@example.com", "login")

	resp, err := suite.service.Login(&LoginRequest{
		Email:    "login@example.com",
		Password: "Sup3rSecret",
	})
	suite.NoError(err)
	suite.NotEmpty(resp.AccessToken)
}

func (suite *AuthServiceTestSuite) TestLoginBadCredentials() {
	suite.register("login@example.com", "login")

	_, err := suite.service.Login(&LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	suite.ErrorIs(err, ErrBadCredential)

	_, err = suite.service.Login(&LoginRequest{
		Email:    "nobody@example.com",
		Password: "Sup3rSecret",
	})
	suite.ErrorIs(err, ErrBadCredential)
}

func (suite *AuthServiceTestSuite) TestRefresh() {
	registered := suite.register("refresh@example.com", "refresh")

	resp, err := suite.service.Refresh(&RefreshRequest{RefreshToken: registered.RefreshToken})
	suite.NoError(err)
	suite.Equal(registered.User.ID, resp.User.ID)

	_, err = suite.service.Refresh(&RefreshRequest{RefreshToken: "not-a-token"})
	suite.ErrorIs(err, ErrBadCredential)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
