package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/features/user/models"
	"nft-marketplace-backend/internal/features/user/service"
)

type UserHandler struct {
	service        service.UserService
	maxUploadBytes int64
}

func NewUserHandler(service service.UserService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/connect-wallet", h.ConnectWallet)
	}

	users := router.Group("/users")
	{
		users.GET("/:address", h.GetUser)
	}

	profile := router.Group("/profile")
	{
		profile.POST("/upload-avatar", h.UploadAvatar)
	}
}

// @Summary Connect wallet
// @Description Register a wallet on first login or refresh its lastLogin. The address is stored lowercased.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.ConnectWalletRequest true "Wallet address"
// @Success 200 {object} models.ConnectWalletResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing or invalid wallet address"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /auth/connect-wallet [post]
func (h *UserHandler) ConnectWallet(c *gin.Context) {
	var input models.ConnectWalletRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.NewValidationError("walletAddress", "Wallet address is required"))
		return
	}

	user, err := h.service.ConnectWallet(c.Request.Context(), input.WalletAddress)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectWalletResponse{Success: true, User: *user})
}

// @Summary Get user by wallet address
// @Tags users
// @Produce json
// @Param address path string true "Wallet address"
// @Success 200 {object} models.User
// @Failure 400 {object} middleware.ErrorResponse "Invalid address"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{address} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("address"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Upload avatar
// @Description Store an avatar image for a connected wallet and return its public URL.
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Param walletAddress formData string true "Wallet address"
// @Success 200 {object} models.UploadAvatarResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing or invalid fields"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /profile/upload-avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("avatar", "Avatar file is required"))
		return
	}
	walletAddress := c.PostForm("walletAddress")
	if walletAddress == "" {
		_ = c.Error(apperrors.NewValidationError("walletAddress", "Wallet address is required"))
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

	user, err := h.service.UploadAvatar(c.Request.Context(), walletAddress, data)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.UploadAvatarResponse{Success: true, AvatarURL: user.AvatarURL})
}
