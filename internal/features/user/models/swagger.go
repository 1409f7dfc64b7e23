package models

// ConnectWalletRequest is the body of POST /auth/connect-wallet
type ConnectWalletRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required" example:"0x52908400098527886e0f7030069857d2e4169ee7"`
}

// ConnectWalletResponse is returned after a successful login
type ConnectWalletResponse struct {
	Success bool `json:"success" example:"true"`
	User    User `json:"user"`
}

// UploadAvatarResponse is returned after an avatar upload
type UploadAvatarResponse struct {
	Success   bool   `json:"success" example:"true"`
	AvatarURL string `json:"avatarUrl" example:"/avatars/0x52908400098527886e0f7030069857d2e4169ee7_1710513000000.png"`
}
