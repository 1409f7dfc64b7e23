package models

import "time"

// User is a marketplace account. The lowercased wallet address is its identity.
// @Description Marketplace user keyed by wallet address
type User struct {
	WalletAddress string    `json:"walletAddress" example:"0x52908400098527886e0f7030069857d2e4169ee7"`
	CreatedAt     time.Time `json:"createdAt" example:"2024-03-15T14:30:00Z"`
	LastLogin     time.Time `json:"lastLogin" example:"2024-03-15T14:30:00Z"`
	AvatarURL     string    `json:"avatarUrl,omitempty" example:"/avatars/0x52908400098527886e0f7030069857d2e4169ee7_1710513000000.png"`
}
