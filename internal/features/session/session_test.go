package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nft-marketplace-backend/internal/common/errors"
	usermodels "nft-marketplace-backend/internal/features/user/models"
	"nft-marketplace-backend/internal/platform/wallet"
)

var (
	alice = common.HexToAddress("0x52908400098527886E0F7030069857D2E4169EE7")
	bob   = common.HexToAddress("0x8617E340B3D01FA5F11F306F4090FD50E238070D")
)

type fakeWallet struct {
	mu        sync.Mutex
	access    []common.Address
	accessErr error
	accounts  []common.Address
	handler   wallet.AccountsHandler
	unsubbed  int
}

func (w *fakeWallet) GetAccounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accounts, nil
}

func (w *fakeWallet) RequestAccess(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.access, w.accessErr
}

func (w *fakeWallet) SubscribeAccountsChanged(handler wallet.AccountsHandler) wallet.Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = handler
	return unsubscribeFunc(func() {
		w.mu.Lock()
		w.unsubbed++
		w.mu.Unlock()
	})
}

type unsubscribeFunc func()

func (f unsubscribeFunc) Unsubscribe() { f() }

// fakeRegistrar lowercases like the backend and can hold a call until released.
type fakeRegistrar struct {
	mu      sync.Mutex
	calls   []string
	block   map[string]chan struct{}
	started chan string
	err     error
}

func newRegistrar() *fakeRegistrar {
	return &fakeRegistrar{block: map[string]chan struct{}{}, started: make(chan string, 8)}
}

func (r *fakeRegistrar) hold(address common.Address) chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.block[address.Hex()] = ch
	r.mu.Unlock()
	return ch
}

func (r *fakeRegistrar) RegisterOrTouch(ctx context.Context, address string) (*usermodels.User, error) {
	r.mu.Lock()
	r.calls = append(r.calls, address)
	ch := r.block[address]
	err := r.err
	r.mu.Unlock()

	r.started <- address
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &usermodels.User{WalletAddress: strings.ToLower(address), CreatedAt: now, LastLogin: now}, nil
}

func TestConnectSuccess(t *testing.T) {
	w := &fakeWallet{access: []common.Address{alice, bob}}
	s := New(w, newRegistrar(), time.Second)

	require.NoError(t, s.Connect(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, Connected, snap.State)
	assert.True(t, snap.Connected())
	assert.Equal(t, alice.Hex(), snap.Address)
	require.NotNil(t, snap.User)
	assert.Equal(t, strings.ToLower(alice.Hex()), snap.User.WalletAddress)
	assert.NoError(t, snap.Err)
}

func TestConnectUserRejected(t *testing.T) {
	w := &fakeWallet{accessErr: apperrors.New(apperrors.ErrCodeUserRejected, "User rejected the request")}
	reg := newRegistrar()
	s := New(w, reg, time.Second)

	err := s.Connect(context.Background())
	assert.Equal(t, apperrors.ErrCodeUserRejected, apperrors.CodeOf(err))

	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	assert.Empty(t, snap.Address)
	assert.Nil(t, snap.User)
	assert.Equal(t, apperrors.ErrCodeUserRejected, apperrors.CodeOf(snap.Err))
	assert.Empty(t, reg.calls)
}

func TestConnectNoAccounts(t *testing.T) {
	s := New(&fakeWallet{}, newRegistrar(), time.Second)

	err := s.Connect(context.Background())
	assert.Equal(t, apperrors.ErrCodeNoAccounts, apperrors.CodeOf(err))
	assert.Equal(t, Disconnected, s.Snapshot().State)
}

func TestConnectRegistrationFailure(t *testing.T) {
	reg := newRegistrar()
	reg.err = apperrors.NewServerError(500, "boom")
	s := New(&fakeWallet{access: []common.Address{alice}}, reg, time.Second)

	err := s.Connect(context.Background())
	assert.Equal(t, apperrors.ErrCodeServer, apperrors.CodeOf(err))

	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	assert.Empty(t, snap.Address)
	assert.Nil(t, snap.User)
}

func TestConnectIsSingleFlight(t *testing.T) {
	reg := newRegistrar()
	release := reg.hold(alice)
	s := New(&fakeWallet{access: []common.Address{alice}}, reg, time.Second)

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()
	<-reg.started

	assert.Equal(t, Connecting, s.Snapshot().State)
	assert.NoError(t, s.Connect(context.Background()), "second call is a no-op")

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, reg.calls, 1)
	assert.Equal(t, Connected, s.Snapshot().State)
}

func TestAccountChangeDuringConnectWins(t *testing.T) {
	reg := newRegistrar()
	release := reg.hold(alice)
	w := &fakeWallet{access: []common.Address{alice}}
	s := New(w, reg, time.Second)
	s.Start()
	defer s.Close()

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()
	assert.Equal(t, alice.Hex(), <-reg.started)

	w.handler([]common.Address{bob})
	<-reg.started

	snap := s.Snapshot()
	assert.Equal(t, Connected, snap.State)
	assert.Equal(t, bob.Hex(), snap.Address)

	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap = s.Snapshot()
	assert.Equal(t, bob.Hex(), snap.Address)
	require.NotNil(t, snap.User)
	assert.Equal(t, strings.ToLower(bob.Hex()), snap.User.WalletAddress)
}

func TestAccountChangeReplacesSession(t *testing.T) {
	w := &fakeWallet{access: []common.Address{alice}}
	reg := newRegistrar()
	s := New(w, reg, time.Second)
	s.Start()
	require.NoError(t, s.Connect(context.Background()))

	var seen []Snapshot
	stop := s.Watch(func(snap Snapshot) { seen = append(seen, snap) })
	defer stop()

	// same first account is ignored
	w.handler([]common.Address{alice, bob})
	assert.Len(t, reg.calls, 1)

	w.handler([]common.Address{bob})
	snap := s.Snapshot()
	assert.Equal(t, bob.Hex(), snap.Address)
	assert.Equal(t, strings.ToLower(bob.Hex()), snap.User.WalletAddress)

	// watchers only ever see a matching pair
	for _, v := range seen {
		if v.User != nil {
			assert.True(t, strings.EqualFold(v.Address, v.User.WalletAddress))
		}
	}

	w.handler(nil)
	snap = s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	assert.Nil(t, snap.User)

	s.Close()
	assert.Equal(t, 1, w.unsubbed)
}

func TestDisconnectClearsSession(t *testing.T) {
	reg := newRegistrar()
	s := New(&fakeWallet{access: []common.Address{alice}}, reg, time.Second)
	require.NoError(t, s.Connect(context.Background()))

	var last Snapshot
	stop := s.Watch(func(snap Snapshot) { last = snap })
	s.Disconnect()
	stop()

	assert.Equal(t, Disconnected, last.State)
	assert.Empty(t, last.Address)
	assert.Nil(t, last.User)
	assert.Len(t, reg.calls, 1, "disconnect does not call the backend")
}

func TestDisconnectDiscardsInFlightConnect(t *testing.T) {
	reg := newRegistrar()
	release := reg.hold(alice)
	s := New(&fakeWallet{access: []common.Address{alice}}, reg, time.Second)

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()
	<-reg.started

	s.Disconnect()
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, Disconnected, s.Snapshot().State)
	assert.Nil(t, s.Snapshot().User)
}

func TestRestore(t *testing.T) {
	w := &fakeWallet{}
	reg := newRegistrar()
	s := New(w, reg, time.Second)

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, Disconnected, s.Snapshot().State)

	w.accounts = []common.Address{bob}
	require.NoError(t, s.Restore(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, Connected, snap.State)
	assert.Equal(t, bob.Hex(), snap.Address)
}

func TestRegistrarAddressMismatch(t *testing.T) {
	s := New(&fakeWallet{access: []common.Address{alice}}, mismatchRegistrar{}, time.Second)

	err := s.Connect(context.Background())
	assert.Equal(t, apperrors.ErrCodeServer, apperrors.CodeOf(err))
	assert.Nil(t, s.Snapshot().User)
}

type mismatchRegistrar struct{}

func (mismatchRegistrar) RegisterOrTouch(context.Context, string) (*usermodels.User, error) {
	return &usermodels.User{WalletAddress: strings.ToLower(bob.Hex())}, nil
}
