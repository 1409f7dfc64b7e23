package models

// NFTResponse wraps a single NFT
type NFTResponse struct {
	NFT NFT `json:"nft"`
}

// CreateNFTResponse is returned by POST /nft/create
type CreateNFTResponse struct {
	Success bool `json:"success" example:"true"`
	NFT     NFT  `json:"nft"`
}

// NFTListResponse wraps a list of NFTs
type NFTListResponse struct {
	NFTs []NFT `json:"nfts"`
}

// PurchaseRequest is the body of POST /nft/{id}/purchase
type PurchaseRequest struct {
	Buyer  string `json:"buyer" binding:"required" example:"0x52908400098527886e0f7030069857d2e4169ee7"`
	TxHash string `json:"txHash,omitempty" example:"0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"`
}

// PurchaseResponse confirms an ownership update
type PurchaseResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"NFT purchase successful"`
	NFT     *NFT   `json:"nft,omitempty"`
}
