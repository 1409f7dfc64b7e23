package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"nft-marketplace-backend/internal/common/config"
	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	"nft-marketplace-backend/internal/common/units"
	purchaseservice "nft-marketplace-backend/internal/features/purchase/service"
	"nft-marketplace-backend/internal/features/session"
	txservice "nft-marketplace-backend/internal/features/transaction/service"
	"nft-marketplace-backend/internal/platform/marketapi"
	"nft-marketplace-backend/internal/platform/wallet"
)

var (
	apiFlag = &cli.StringFlag{
		Name:    "api",
		Usage:   "marketplace API base URL",
		EnvVars: []string{"API_BASE_URL"},
	}
	providerFlag = &cli.StringFlag{
		Name:    "provider",
		Usage:   "wallet JSON-RPC endpoint",
		EnvVars: []string{"WALLET_PROVIDER_URL"},
	}
	debugFlag = &cli.BoolFlag{
		Name:    "debug",
		Usage:   "verbose logging",
		EnvVars: []string{"DEBUG"},
	}
	nftFlag = &cli.StringFlag{
		Name:     "nft",
		Usage:    "id of the NFT to buy",
		Required: true,
	}
)

func main() {
	app := &cli.App{
		Name:  "buyer",
		Usage: "connect a wallet and buy NFTs from the marketplace",
		Flags: []cli.Flag{apiFlag, providerFlag, debugFlag},
		Commands: []*cli.Command{
			{
				Name:   "connect",
				Usage:  "request wallet access and register it with the marketplace",
				Action: connectAction,
			},
			{
				Name:   "purchase",
				Usage:  "pay for an NFT and record the new owner",
				Flags:  []cli.Flag{nftFlag},
				Action: purchaseAction,
			},
			{
				Name:   "watch",
				Usage:  "follow wallet account switches until interrupted",
				Action: watchAction,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", describe(err))
		os.Exit(1)
	}
}

// client bundles everything a command needs.
type client struct {
	cfg     *config.Config
	adapter *wallet.Adapter
	api     *marketapi.Client
	session *session.Session
}

func newClient(c *cli.Context) (*client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet(apiFlag.Name) {
		cfg.Client.APIBaseURL = c.String(apiFlag.Name)
	}
	if c.IsSet(providerFlag.Name) {
		cfg.Client.ProviderURL = c.String(providerFlag.Name)
	}
	logger.InitWithWriter(os.Stderr, "nft-buyer", cfg.Debug || c.Bool(debugFlag.Name))

	provider, err := wallet.Dial(c.Context, cfg.Client.ProviderURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "Cannot reach wallet provider")
	}
	adapter := wallet.NewAdapter(provider, cfg.Client.AccountsPollInterval)
	api := marketapi.NewClient(cfg.Client.APIBaseURL, cfg.Client.HTTPTimeout)

	return &client{
		cfg:     cfg,
		adapter: adapter,
		api:     api,
		session: session.New(adapter, api, cfg.Client.HTTPTimeout),
	}, nil
}

func (cl *client) Close() {
	cl.session.Close()
	cl.adapter.Close()
}

func connectAction(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	if err := cl.session.Connect(c.Context); err != nil {
		return err
	}
	return printJSON(c.App.Writer, cl.session.Snapshot().User)
}

func purchaseAction(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	if err := cl.session.Connect(c.Context); err != nil {
		return err
	}
	snap := cl.session.Snapshot()
	if !snap.Connected() {
		return apperrors.New(apperrors.ErrCodeNoAccounts, "Wallet is not connected")
	}

	workflow := txservice.NewWorkflow(cl.adapter, cl.cfg.Client.ReceiptPollInterval, cl.cfg.Client.ReceiptPollAttempts)
	orchestrator := purchaseservice.NewOrchestrator(cl.api, workflow)

	result, err := orchestrator.Purchase(c.Context, c.String(nftFlag.Name), common.HexToAddress(snap.Address))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, newPurchaseOutput(result))
}

type purchaseOutput struct {
	*purchaseservice.PurchaseResult
	ValueEth string `json:"valueEth"`
}

func newPurchaseOutput(result *purchaseservice.PurchaseResult) purchaseOutput {
	return purchaseOutput{PurchaseResult: result, ValueEth: units.WeiToEth(result.ValueWei)}
}

func watchAction(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	out := c.App.Writer
	stop := cl.session.Watch(func(s session.Snapshot) {
		switch {
		case s.Connected():
			fmt.Fprintf(out, "%s %s (last login %s)\n", s.State, s.Address, s.User.LastLogin.Format("2006-01-02 15:04:05"))
		case s.Err != nil:
			fmt.Fprintf(out, "%s: %v\n", s.State, describe(s.Err))
		default:
			fmt.Fprintln(out, s.State)
		}
	})
	defer stop()

	if err := cl.session.Restore(c.Context); err != nil {
		logger.Warn().Err(err).Msg("Could not restore wallet connection")
	}
	cl.session.Start()

	<-c.Context.Done()
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe renders an error with its code so failure classes stay distinguishable.
func describe(err error) string {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return err.Error()
	}
	if hash, ok := appErr.Details["txHash"]; ok {
		return fmt.Sprintf("[%s] %s (tx %v)", appErr.Code, appErr.Message, hash)
	}
	return fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message)
}
