package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	nftmodels "nft-marketplace-backend/internal/features/nft/models"
	usermodels "nft-marketplace-backend/internal/features/user/models"
)

const maxErrorBody = 4 << 10

// Client talks to the marketplace HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type connectWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.Component("market-api"),
	}
}

// RegisterOrTouch creates the user on first login and refreshes lastLogin afterwards.
func (c *Client) RegisterOrTouch(ctx context.Context, address string) (*usermodels.User, error) {
	var resp usermodels.ConnectWalletResponse
	if err := c.do(ctx, http.MethodPost, "/auth/connect-wallet", connectWalletRequest{WalletAddress: address}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// GetNFT fetches a listing. A 404 maps to NOT_FOUND.
func (c *Client) GetNFT(ctx context.Context, id string) (*nftmodels.NFT, error) {
	var resp nftmodels.NFTResponse
	err := c.do(ctx, http.MethodGet, "/nft/"+url.PathEscape(id), nil, &resp)
	if err != nil {
		if status, ok := serverStatus(err); ok && status == http.StatusNotFound {
			return nil, apperrors.NewNotFoundError("NFT", id)
		}
		return nil, err
	}
	return &resp.NFT, nil
}

// ConfirmPurchase asks the backend to move ownership of id to buyer.
func (c *Client) ConfirmPurchase(ctx context.Context, id, buyer, txHash string) error {
	body := nftmodels.PurchaseRequest{Buyer: buyer, TxHash: txHash}
	var resp nftmodels.PurchaseResponse
	if err := c.do(ctx, http.MethodPost, "/nft/"+url.PathEscape(id)+"/purchase", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return apperrors.New(apperrors.ErrCodeServer, "server did not confirm the purchase")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return apperrors.NewNetworkError(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return serverError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServer, "malformed response body").
			WithDetail("status", resp.StatusCode)
	}
	return nil
}

func serverError(status int, raw []byte) *apperrors.AppError {
	appErr := apperrors.NewServerError(status, string(raw))

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Error != "" {
			appErr.Message = eb.Error
		}
		if eb.Code != "" {
			appErr.WithDetail("serverCode", eb.Code)
		}
	}
	return appErr
}

func serverStatus(err error) (int, bool) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeServer {
		return 0, false
	}
	status, ok := appErr.Details["status"].(int)
	return status, ok
}
