package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/features/nft/models"
	"nft-marketplace-backend/internal/features/nft/service"
)

type NFTHandler struct {
	service        service.NFTService
	maxUploadBytes int64
}

func NewNFTHandler(service service.NFTService, maxUploadBytes int64) *NFTHandler {
	return &NFTHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *NFTHandler) RegisterRoutes(router *gin.RouterGroup) {
	nft := router.Group("/nft")
	{
		nft.POST("/create", h.Create)
		nft.GET("/user", h.ListByAddress)
		nft.GET("/:id", h.GetByID)
		nft.POST("/:id/purchase", h.Purchase)
	}
}

// @Summary Create NFT
// @Description Upload an image with metadata. The creator becomes the first owner.
// @Tags nft
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param price formData string true "Price in ETH"
// @Param creator formData string true "Creator wallet address"
// @Success 201 {object} models.CreateNFTResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing or invalid fields"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /nft/create [post]
func (h *NFTHandler) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("image", "Image file is required"))
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		_ = c.Error(apperrors.NewValidationError("image", "Image is too large"))
		return
	}

	f, err := file.Open()
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeStorageError, "Failed to read upload"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeStorageError, "Failed to read upload"))
		return
	}

	nft, err := h.service.Create(c.Request.Context(), models.CreateInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Creator:     c.PostForm("creator"),
		Image:       data,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateNFTResponse{Success: true, NFT: *nft})
}

// @Summary Get NFT by id
// @Tags nft
// @Produce json
// @Param id path string true "NFT id"
// @Success 200 {object} models.NFTResponse
// @Failure 404 {object} middleware.ErrorResponse "NFT not found"
// @Router /nft/{id} [get]
func (h *NFTHandler) GetByID(c *gin.Context) {
	nft, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.NFTResponse{NFT: *nft})
}

// @Summary List NFTs for a wallet
// @Description NFTs created by or currently owned by the address, newest first.
// @Tags nft
// @Produce json
// @Param address query string true "Wallet address"
// @Success 200 {object} models.NFTListResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid address"
// @Router /nft/user [get]
func (h *NFTHandler) ListByAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		_ = c.Error(apperrors.NewValidationError("address", "Address is required"))
		return
	}

	nfts, err := h.service.ListByAddress(c.Request.Context(), address)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := models.NFTListResponse{NFTs: make([]models.NFT, 0, len(nfts))}
	for _, n := range nfts {
		resp.NFTs = append(resp.NFTs, *n)
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Record NFT purchase
// @Description Transfer ownership to the buyer after payment. txHash is required when on-chain verification is enabled.
// @Tags nft
// @Accept json
// @Produce json
// @Param id path string true "NFT id"
// @Param body body models.PurchaseRequest true "Buyer and transaction hash"
// @Success 200 {object} models.PurchaseResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid buyer"
// @Failure 402 {object} middleware.ErrorResponse "Payment not verified"
// @Failure 404 {object} middleware.ErrorResponse "NFT not found"
// @Failure 409 {object} middleware.ErrorResponse "Buyer already owns the NFT"
// @Router /nft/{id}/purchase [post]
func (h *NFTHandler) Purchase(c *gin.Context) {
	var input models.PurchaseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.NewValidationError("buyer", "Buyer address is required"))
		return
	}

	nft, err := h.service.Purchase(c.Request.Context(), c.Param("id"), input.Buyer, input.TxHash)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseResponse{
		Success: true,
		Message: "NFT purchase successful",
		NFT:     nft,
	})
}
