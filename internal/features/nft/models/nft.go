package models

import "time"

// NFT is a listed token. Creator and Owner are lowercased wallet addresses;
// Price is a decimal ETH amount kept as text to avoid float rounding.
// @Description Marketplace NFT
type NFT struct {
	ID          string    `json:"id" example:"0b5c1a5e-8a55-4d3c-9a53-4e0d5a3c3d21"`
	Name        string    `json:"name" example:"Sunset #1"`
	Description string    `json:"description" example:"Golden hour over the bay"`
	Price       string    `json:"price" example:"0.1"`
	ImageURL    string    `json:"imageUrl" example:"/nfts/0b5c1a5e-8a55-4d3c-9a53-4e0d5a3c3d21.png"`
	Creator     string    `json:"creator" example:"0x52908400098527886e0f7030069857d2e4169ee7"`
	Owner       string    `json:"owner" example:"0x52908400098527886e0f7030069857d2e4169ee7"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput carries a validated upload to the service.
type CreateInput struct {
	Name        string
	Description string
	Price       string
	Creator     string
	Image       []byte
}
