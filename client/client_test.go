package client

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/jetton"
	"github.com/mezonai/jetton/ledger"
	"github.com/mezonai/jetton/message"
	"github.com/mezonai/jetton/store"
	"github.com/mezonai/jetton/utils"
)

var now = time.Unix(1_720_000_000, 0)

func toNano(s string) *uint256.Int {
	return utils.MustToNano(s)
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	stores, err := store.CreateStore(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	l, err := ledger.NewLedger(stores, ledger.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return l
}

func treasury(t *testing.T, l *ledger.Ledger, name string) *address.Address {
	t.Helper()
	addr, err := l.Treasury(name)
	require.NoError(t, err)
	return addr
}

func TestJetton(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	owner := treasury(t, l, "owner")
	user1 := treasury(t, l, "user1")
	user2 := treasury(t, l, "user2")

	minter, err := NewJettonMinterFromConfig(l, JettonMinterConfig{Admin: owner, Content: cell.Empty(), WalletCode: jetton.WalletCode})
	require.NoError(t, err)
	deploy, err := minter.SendDeploy(ctx, owner, toNano("0.05"))
	require.NoError(t, err)
	require.NotNil(t, deploy.Find(ledger.MatchFrom(owner), ledger.MatchTo(minter.Address), ledger.MatchDeploy(true), ledger.MatchSuccess(true)))

	wallet1, err := NewJettonWalletFromConfig(l, JettonWalletConfig{Owner: user1, Minter: minter.Address})
	require.NoError(t, err)
	wallet2, err := NewJettonWalletFromConfig(l, JettonWalletConfig{Owner: user2, Minter: minter.Address})
	require.NoError(t, err)

	t.Run("wallet address", func(t *testing.T) {
		addr, err := minter.GetWalletAddress(ctx, user1)
		require.NoError(t, err)
		assert.True(t, addr.Equal(wallet1.Address))

		balance, err := wallet1.GetJettonBalance(ctx)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("mint", func(t *testing.T) {
		_, err := minter.SendMint(ctx, owner, user1, toNano("100"), toNano("0.05"), toNano("1"))
		require.NoError(t, err)

		balance, err := wallet1.GetJettonBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, toNano("100"), balance)
	})

	t.Run("transfer", func(t *testing.T) {
		_, err := wallet1.SendTransfer(ctx, toNano("0.2"), user1, toNano("50"), user2, user1, nil, toNano("0.1"), nil)
		require.NoError(t, err)

		b1, err := wallet1.GetJettonBalance(ctx)
		require.NoError(t, err)
		b2, err := wallet2.GetJettonBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, toNano("50"), b1)
		assert.Equal(t, toNano("50"), b2)
	})

	t.Run("burn", func(t *testing.T) {
		_, err := wallet1.SendBurn(ctx, user1, toNano("0.2"), toNano("5"), user1, cell.Empty())
		require.NoError(t, err)

		balance, err := wallet1.GetJettonBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, toNano("45"), balance)
		supply, err := minter.GetTotalSupply(ctx)
		require.NoError(t, err)
		assert.Equal(t, toNano("95"), supply)
	})

	t.Run("wallet data", func(t *testing.T) {
		data, err := wallet2.GetWalletData(ctx)
		require.NoError(t, err)
		assert.True(t, data.Owner.Equal(user2))
		assert.True(t, data.Minter.Equal(minter.Address))
		assert.Equal(t, jetton.WalletCode.Hash(), data.WalletCode.Hash())
	})

	t.Run("admin", func(t *testing.T) {
		res, err := minter.SendChangeAdmin(ctx, user1, user1)
		require.NoError(t, err)
		failed := res.Find(ledger.MatchTo(minter.Address), ledger.MatchSuccess(false))
		require.NotNil(t, failed)
		assert.Equal(t, errors.ExitCodeUnauthorized, failed.ExitCode)

		content, err := jetton.Content{Type: jetton.ContentOffchain, URI: "https://example.org/meta.json"}.Cell()
		require.NoError(t, err)
		_, err = minter.SendChangeContent(ctx, owner, content)
		require.NoError(t, err)
		_, err = minter.SendChangeAdmin(ctx, owner, user2)
		require.NoError(t, err)

		data, err := minter.GetJettonData(ctx)
		require.NoError(t, err)
		assert.True(t, data.Mintable)
		assert.True(t, data.AdminAddress.Equal(user2))
		assert.Equal(t, content.Hash(), data.Content.Hash())
	})
}

func TestMintCost(t *testing.T) {
	assert.Equal(t, toNano("1.011"), MintCost(contract.DefaultFees(), toNano("1")))
	assert.True(t, MintOverhead.Gt(contract.DefaultFees().Cost(1, 1)))
}

type walletEnv struct {
	ctx      context.Context
	l        *ledger.Ledger
	deployer *address.Address
	wallet   *Wallet
	key      ed25519.PrivateKey
}

func deployWallet(t *testing.T) *walletEnv {
	t.Helper()
	ctx := context.Background()
	l := newLedger(t)
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	w, err := NewWalletFromConfig(l, WalletConfig{Seqno: 0, PublicKey: pub})
	require.NoError(t, err)
	deployer := treasury(t, l, "deployer")

	seqno, err := w.GetSeqno(ctx)
	require.NoError(t, err)
	assert.Zero(t, seqno)

	res, err := w.SendDeploy(ctx, deployer, toNano("100"))
	require.NoError(t, err)
	require.NotNil(t, res.Find(ledger.MatchFrom(deployer), ledger.MatchTo(w.Address), ledger.MatchDeploy(true), ledger.MatchSuccess(true)))
	return &walletEnv{ctx: ctx, l: l, deployer: deployer, wallet: w, key: key}
}

func validUntil() uint32 {
	return uint32(now.Unix()) + 1000
}

func TestWalletDeploy(t *testing.T) {
	env := deployWallet(t)

	pub, err := env.wallet.GetPublicKey(env.ctx)
	require.NoError(t, err)
	expected := new(uint256.Int).SetBytes(env.key.Public().(ed25519.PublicKey))
	assert.Equal(t, expected, pub)

	seqno, err := env.wallet.GetSeqno(env.ctx)
	require.NoError(t, err)
	assert.Zero(t, seqno)

	balance, err := env.wallet.GetBalance(env.ctx)
	require.NoError(t, err)
	assert.True(t, balance.Lt(toNano("100")))
}

func TestWalletExternalMessage(t *testing.T) {
	env := deployWallet(t)
	before, err := env.wallet.GetBalance(env.ctx)
	require.NoError(t, err)

	seqno, err := env.wallet.GetSeqno(env.ctx)
	require.NoError(t, err)
	msg, err := RequestMessage(validUntil(), seqno, env.key)
	require.NoError(t, err)
	_, err = env.wallet.SendExternalSignedMessage(env.ctx, msg)
	require.NoError(t, err)

	after, err := env.wallet.GetBalance(env.ctx)
	require.NoError(t, err)
	next, err := env.wallet.GetSeqno(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, seqno+1, next)
	assert.True(t, before.Gt(after))

	unsigned, err := RequestMessage(validUntil(), next, nil)
	require.NoError(t, err)
	_, err = env.wallet.SendExternalSignedMessage(env.ctx, unsigned)
	assert.ErrorIs(t, err, errors.ErrMalformedMessage)
}

// relayTo builds the raw internal message layout a wallet owner signs over: a bounceable
// 40 coin transfer with a zero comment opcode.
func relayTo(t *testing.T, dest *address.Address) *cell.Cell {
	t.Helper()
	b := cell.NewBuilder()
	require.NoError(t, b.StoreUint(0x18, 6))
	require.NoError(t, address.Store(b, dest))
	require.NoError(t, b.StoreCoins(toNano("40")))
	require.NoError(t, b.StoreUint(0, 1+4+4+64+32+1+1))
	require.NoError(t, b.StoreUint(0, 32))
	return b.EndCell()
}

func TestWalletTransferAll(t *testing.T) {
	env := deployWallet(t)
	before, err := env.wallet.GetBalance(env.ctx)
	require.NoError(t, err)

	seqno, err := env.wallet.GetSeqno(env.ctx)
	require.NoError(t, err)
	msg, err := SignRequestWithMessage(validUntil(), seqno, contract.SendModeCarryAllBalance, relayTo(t, env.deployer), env.key)
	require.NoError(t, err)
	res, err := env.wallet.SendExternalSignedMessage(env.ctx, msg)
	require.NoError(t, err)

	credit := res.Find(ledger.MatchFrom(env.wallet.Address), ledger.MatchTo(env.deployer))
	require.NotNil(t, credit)
	assert.True(t, credit.InMsg.Bounce)

	after, err := env.wallet.GetBalance(env.ctx)
	require.NoError(t, err)
	next, err := env.wallet.GetSeqno(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, seqno+1, next)
	assert.True(t, before.Gt(after))
	assert.True(t, after.IsZero())

	_, err = env.wallet.SendExternalSignedMessage(env.ctx, msg)
	assert.ErrorIs(t, err, errors.ErrInvalidSeqno)
}

func TestStackTypeErrors(t *testing.T) {
	s := newStack([]any{true, uint256.NewInt(1)})
	_, err := s.readBigNumber()
	assert.Error(t, err)
	_, err = s.readBoolean()
	assert.Error(t, err)
	_, err = s.readCell()
	assert.Error(t, err)

	_, err = message.Decode(cell.Empty())
	assert.Error(t, err)
}
