package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	usermodels "nft-marketplace-backend/internal/features/user/models"
	"nft-marketplace-backend/internal/platform/wallet"
)

// ErrSuperseded is returned by an attempt whose result was discarded because
// a newer attempt, an account switch or a disconnect happened meanwhile.
var ErrSuperseded = errors.New("session: connection attempt superseded")

// Wallet is the part of the wallet adapter the session drives.
type Wallet interface {
	GetAccounts(ctx context.Context) ([]common.Address, error)
	RequestAccess(ctx context.Context) ([]common.Address, error)
	SubscribeAccountsChanged(handler wallet.AccountsHandler) wallet.Subscription
}

// Registrar registers a wallet with the marketplace backend.
type Registrar interface {
	RegisterOrTouch(ctx context.Context, address string) (*usermodels.User, error)
}

// Session owns the connected (address, user) pair. All mutations go
// through its transition methods; readers use Snapshot or Watch.
type Session struct {
	wallet    Wallet
	registrar Registrar
	// bounds registration triggered by wallet events, which carry no caller context
	eventTimeout time.Duration
	log          zerolog.Logger

	mu         sync.Mutex
	state      State
	address    string
	user       *usermodels.User
	err        error
	generation uint64
	pending    string
	version    uint64
	sub        wallet.Subscription
	watchers   map[int]func(Snapshot)
	nextWatch  int

	notifyMu  sync.Mutex
	delivered uint64
}

func New(w Wallet, r Registrar, eventTimeout time.Duration) *Session {
	if eventTimeout <= 0 {
		eventTimeout = 30 * time.Second
	}
	return &Session{
		wallet:       w,
		registrar:    r,
		eventTimeout: eventTimeout,
		log:          logger.Component("wallet-session"),
		watchers:     make(map[int]func(Snapshot)),
	}
}

// Connect prompts the wallet for access and registers the first account.
// It is a no-op while another attempt is in flight.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Connecting {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.state = Connecting
	s.pending = ""
	s.err = nil
	snap := s.changedLocked()
	s.mu.Unlock()
	s.notify(snap)

	accounts, err := s.wallet.RequestAccess(ctx)
	if err != nil {
		return s.fail(gen, err)
	}
	if len(accounts) == 0 {
		return s.fail(gen, apperrors.New(apperrors.ErrCodeNoAccounts, "Wallet returned no accounts"))
	}

	return s.register(ctx, gen, accounts[0])
}

// Restore connects to an account the wallet has already authorised, without
// a permission prompt. With no authorised account the session stays as is.
func (s *Session) Restore(ctx context.Context) error {
	accounts, err := s.wallet.GetAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return nil
	}

	gen, ok := s.beginSwitch(accounts[0])
	if !ok {
		return nil
	}
	return s.register(ctx, gen, accounts[0])
}

// Disconnect clears the session locally. The backend is not notified.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.generation++
	s.state = Disconnected
	s.address = ""
	s.user = nil
	s.err = nil
	s.pending = ""
	snap := s.changedLocked()
	s.mu.Unlock()

	s.log.Info().Msg("Wallet disconnected")
	s.notify(snap)
}

// Start follows wallet account switches until Close.
func (s *Session) Start() {
	sub := s.wallet.SubscribeAccountsChanged(s.handleAccountsChanged)

	s.mu.Lock()
	prev := s.sub
	s.sub = sub
	s.mu.Unlock()
	if prev != nil {
		prev.Unsubscribe()
	}
}

func (s *Session) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Watch calls fn after every committed change. Call the returned func to stop.
func (s *Session) Watch(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Session) handleAccountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		s.Disconnect()
		return
	}

	gen, ok := s.beginSwitch(accounts[0])
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.eventTimeout)
	defer cancel()
	if err := s.register(ctx, gen, accounts[0]); err != nil && !errors.Is(err, ErrSuperseded) {
		s.log.Warn().Err(err).Str("address", accounts[0].Hex()).Msg("Failed to register switched account")
	}
}

// beginSwitch claims a new generation for address unless the session is
// already on it or already registering it. The visible pair is kept until
// the switch commits so readers never see a half-replaced session.
func (s *Session) beginSwitch(address common.Address) (uint64, bool) {
	s.mu.Lock()
	target := address.Hex()
	if s.state == Connected && strings.EqualFold(s.address, target) {
		s.mu.Unlock()
		return 0, false
	}
	if s.state == Connecting && strings.EqualFold(s.pending, target) {
		s.mu.Unlock()
		return 0, false
	}

	s.generation++
	gen := s.generation
	s.pending = target
	if s.state != Disconnected {
		s.mu.Unlock()
		return gen, true
	}
	s.state = Connecting
	s.err = nil
	snap := s.changedLocked()
	s.mu.Unlock()

	s.notify(snap)
	return gen, true
}

func (s *Session) register(ctx context.Context, gen uint64, account common.Address) error {
	address := account.Hex()

	s.mu.Lock()
	if gen == s.generation {
		s.pending = address
	}
	s.mu.Unlock()

	user, err := s.registrar.RegisterOrTouch(ctx, address)
	if err != nil {
		return s.fail(gen, err)
	}
	if user == nil || !strings.EqualFold(user.WalletAddress, address) {
		return s.fail(gen, apperrors.New(apperrors.ErrCodeServer, "Backend registered a different wallet address").
			WithDetail("requested", address))
	}

	s.mu.Lock()
	if gen != s.generation {
		same := s.state == Connected && strings.EqualFold(s.address, address)
		s.mu.Unlock()
		if same {
			return nil
		}
		s.log.Debug().Str("address", address).Msg("Discarding stale registration")
		return ErrSuperseded
	}
	u := *user
	s.state = Connected
	s.address = address
	s.user = &u
	s.err = nil
	s.pending = ""
	snap := s.changedLocked()
	s.mu.Unlock()

	s.log.Info().Str("address", address).Msg("Wallet connected")
	s.notify(snap)
	return nil
}

func (s *Session) fail(gen uint64, err error) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return err
	}
	s.state = Disconnected
	s.address = ""
	s.user = nil
	s.err = err
	s.pending = ""
	snap := s.changedLocked()
	s.mu.Unlock()

	s.log.Warn().Err(err).Str("code", string(apperrors.CodeOf(err))).Msg("Wallet connection failed")
	s.notify(snap)
	return err
}

func (s *Session) changedLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   s.state,
		Address: s.address,
		Err:     s.err,
		Version: s.version,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	s.mu.Lock()
	watchers := make([]func(Snapshot), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	// an older snapshot can lose the race to a newer one
	if snap.Version <= s.delivered {
		return
	}
	s.delivered = snap.Version
	for _, fn := range watchers {
		fn(snap)
	}
}
