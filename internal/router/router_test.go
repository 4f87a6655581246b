// internal/router/router_test.go
package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/scalemarket/scalemarket-backend/internal/config"
	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/router"
)

var routerDBSeq int64

type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	name := fmt.Sprintf("file:scalemarket_router_%d?mode=memory&cache=shared", atomic.AddInt64(&routerDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.UserAddress{},
		&models.Auction{},
		&models.Bid{},
		&models.Offer{},
		&models.Notification{},
	))
	suite.db = db

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "router-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Marketplace: config.MarketplaceConfig{
			AllowSelfBidding: true,
			SweepInterval:    60,
			MaxImageSizeMB:   10,
			MaxImagesPerItem: 10,
		},
	}
	suite.router = router.Initialize(db, cfg)
}

func (suite *RouterTestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) registerUser(email, username string) string {
	w := suite.request(http.MethodPost, "/v1/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": "Sup3rSecret",
		"username": username,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotEmpty(response.Data.AccessToken)
	return response.Data.AccessToken
}

func (suite *RouterTestSuite) createAuction(token string) uint {
	endTime := time.Now().Add(48 * time.Hour)
	w := suite.request(http.MethodPost, "/v1/auctions", token, map[string]interface{}{
		"title":          "Panther Ausf. G 1:35",
		"description":    "Built and weathered",
		"starting_price": 50,
		"end_time":       endTime.Format(time.RFC3339),
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Data struct {
			Auction struct {
				ID uint `json:"id"`
			} `json:"auction"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.Data.Auction.ID
}

func (suite *RouterTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *RouterTestSuite) TestRegisterAndLogin() {
	suite.registerUser("login@example.com", "login")

	w := suite.request(http.MethodPost, "/v1/auth/login", "", map[string]interface{}{
		"email":    "login@example.com",
		"password": "Sup3rSecret",
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/v1/auth/login", "", map[string]interface{}{
		"email":    "login@example.com",
		"password": "wrong",
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestCreateAuctionRequiresAuth() {
	w := suite.request(http.MethodPost, "/v1/auctions", "", map[string]interface{}{
		"title":          "No token",
		"description":    "Should fail",
		"starting_price": 10,
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestAuctionLifecycle() {
	sellerToken := suite.registerUser("seller@example.com", "seller")
	bidderToken := suite.registerUser("bidder@example.com", "bidder")

	auctionID := suite.createAuction(sellerToken)

	w := suite.request(http.MethodGet, fmt.Sprintf("/v1/auctions/%d", auctionID), "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// Bid below the current price is rejected with a reason code.
	w = suite.request(http.MethodPost, fmt.Sprintf("/v1/auctions/%d/bids", auctionID), bidderToken,
		map[string]interface{}{"amount": 50})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "BID_TOO_LOW")

	w = suite.request(http.MethodPost, fmt.Sprintf("/v1/auctions/%d/bids", auctionID), bidderToken,
		map[string]interface{}{"amount": 60})
	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	// Offers belong to direct sales only.
	w = suite.request(http.MethodPost, fmt.Sprintf("/v1/auctions/%d/offers", auctionID), bidderToken,
		map[string]interface{}{"amount": 30})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "WRONG_SALE_TYPE")

	// The seller closes the auction; closing twice is a conflict.
	w = suite.request(http.MethodPost, fmt.Sprintf("/v1/auctions/%d/end", auctionID), sellerToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, fmt.Sprintf("/v1/auctions/%d/end", auctionID), sellerToken, nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	// The bidder got outcome notifications over the run.
	w = suite.request(http.MethodGet, "/v1/notifications", sellerToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *RouterTestSuite) TestListAuctionsPaginationHeaders() {
	sellerToken := suite.registerUser("seller@example.com", "seller")
	suite.createAuction(sellerToken)
	suite.createAuction(sellerToken)

	w := suite.request(http.MethodGet, "/v1/auctions?limit=1", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "2", w.Header().Get("X-Total-Count"))
	assert.Equal(suite.T(), "2", w.Header().Get("X-Total-Pages"))
}

func (suite *RouterTestSuite) TestShowOwnRequiresAuth() {
	w := suite.request(http.MethodGet, "/v1/auctions?show_own=true", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
