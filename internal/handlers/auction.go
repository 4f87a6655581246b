// internal/handlers/auction.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/services"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

type AuctionHandler struct {
	auctionService *services.AuctionService
	storageService *services.StorageService
}

func NewAuctionHandler(auctionService *services.AuctionService, storageService *services.StorageService) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
		storageService: storageService,
	}
}

// GET /auctions
func (h *AuctionHandler) GetAuctions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.AuctionSearchParams{
		PaginationParams: params,
	}

	if category := c.Query("category"); category != "" {
		auctionCategory := models.AuctionCategory(category)
		searchParams.Category = &auctionCategory
	}

	if group := c.Query("category_group"); group != "" {
		searchParams.CategoryGroup = group
	}

	if scale := c.Query("scale"); scale != "" {
		searchParams.Scale = scale
	}

	if era := c.Query("era"); era != "" {
		searchParams.Era = era
	}

	if condition := c.Query("condition"); condition != "" {
		auctionCondition := models.AuctionCondition(condition)
		searchParams.Condition = &auctionCondition
	}

	if status := c.Query("status"); status != "" {
		auctionStatus := models.AuctionStatus(status)
		searchParams.Status = &auctionStatus
	}

	if saleType := c.Query("sale_type"); saleType != "" {
		st := models.SaleType(saleType)
		searchParams.SaleType = &st
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseFloat(priceMinStr, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}

	if showOwnStr := c.Query("show_own"); showOwnStr != "" {
		if showOwn, err := strconv.ParseBool(showOwnStr); err == nil {
			searchParams.ShowOwn = showOwn
		}
	}

	var actorID *uint
	if userID, exists := utils.GetUserIDFromContext(c); exists {
		actorID = &userID
	}

	auctions, total, err := h.auctionService.SearchAuctions(searchParams, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(auctions, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	auction, err := h.auctionService.GetAuction(uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"auction": auction})
}

// POST /auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auction, err := h.auctionService.CreateAuction(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"auction": auction})
}

// PUT /auctions/:id
func (h *AuctionHandler) UpdateAuction(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	var req services.UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auction, err := h.auctionService.UpdateAuction(uint(id), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"auction": auction})
}

// DELETE /auctions/:id
func (h *AuctionHandler) DeleteAuction(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	if err := h.auctionService.DeleteAuction(uint(id), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Auction deleted"})
}

// POST /auctions/:id/end
func (h *AuctionHandler) EndAuction(c *gin.Context) {
	h.transition(c, h.auctionService.EndAuction)
}

// POST /auctions/:id/cancel
func (h *AuctionHandler) CancelAuction(c *gin.Context) {
	h.transition(c, h.auctionService.CancelAuction)
}

func (h *AuctionHandler) transition(c *gin.Context, fn func(id, actorID uint) (*models.Auction, error)) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	auction, err := fn(uint(id), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"auction": auction})
}

// GET /auctions/:id/bids
func (h *AuctionHandler) GetAuctionBids(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	bids, err := h.auctionService.GetAuctionBids(uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"bids": bids})
}

// GET /auctions/:id/winning-bid
func (h *AuctionHandler) GetWinningBid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	bid, err := h.auctionService.GetWinningBid(uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"winning_bid": bid})
}

// POST /auctions/upload-images
func (h *AuctionHandler) UploadImages(c *gin.Context) {
	if _, exists := utils.GetUserIDFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images provided", nil)
		return
	}
	if max := h.storageService.MaxImagesPerUpload(); len(files) > max {
		utils.BadRequestResponse(c, "Too many images", gin.H{"max_images": max})
		return
	}

	var results []services.UploadResult
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to read uploaded file", err.Error())
			return
		}

		result, err := h.storageService.UploadImage(file, header)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}

		results = append(results, *result)
	}

	utils.CreatedResponse(c, gin.H{"images": results})
}

// GET /auctions/categories
func (h *AuctionHandler) GetCategories(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"categories": models.AuctionCategories()})
}

// GET /auctions/conditions
func (h *AuctionHandler) GetConditions(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"conditions": models.AuctionConditions()})
}

// GET /auctions/statuses
func (h *AuctionHandler) GetStatuses(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"statuses": models.AuctionStatuses()})
}
