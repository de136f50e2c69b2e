package jetton

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/message"
)

const coin = 1_000_000_000

var (
	admin = address.New(0, [32]byte{1})
	alice = address.New(0, [32]byte{2})
	bob   = address.New(0, [32]byte{3})
)

func coins(n uint64) *uint256.Int { return uint256.NewInt(n) }

type minterFixture struct {
	self *address.Address
	data *MinterData
}

func newMinter(t *testing.T, supply uint64) *minterFixture {
	t.Helper()
	self, err := MinterAddress(0, admin, cell.Empty(), WalletCode)
	require.NoError(t, err)
	return &minterFixture{
		self: self,
		data: &MinterData{TotalSupply: coins(supply), Admin: admin, Content: cell.Empty(), WalletCode: WalletCode},
	}
}

func (f *minterFixture) context(t *testing.T, value uint64) *contract.Context {
	t.Helper()
	data, err := f.data.Cell()
	require.NoError(t, err)
	return contract.NewContext(f.self, MinterCode, data, coins(coin), coins(value), 0, 1, contract.DefaultFees())
}

func walletContext(t *testing.T, owner, minter *address.Address, balance, value uint64) *contract.Context {
	t.Helper()
	self, err := WalletAddress(0, owner, minter, WalletCode)
	require.NoError(t, err)
	data, err := (&WalletData{Balance: coins(balance), Owner: owner, Minter: minter, WalletCode: WalletCode}).Cell()
	require.NoError(t, err)
	return contract.NewContext(self, WalletCode, data, coins(coin), coins(value), 0, 1, contract.DefaultFees())
}

func internal(t *testing.T, src *address.Address, value uint64, body message.Body) *message.Internal {
	t.Helper()
	encoded, err := message.Encode(body)
	require.NoError(t, err)
	return &message.Internal{Bounce: true, Src: src, Value: coins(value), Body: encoded}
}

func TestStorageRoundTrip(t *testing.T) {
	content, err := Content{Type: ContentOffchain, URI: "https://example.org/meta.json"}.Cell()
	require.NoError(t, err)
	md := &MinterData{TotalSupply: coins(123), Admin: admin, Content: content, WalletCode: WalletCode}
	c, err := md.Cell()
	require.NoError(t, err)
	loaded, err := LoadMinterData(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), loaded.TotalSupply.Uint64())
	assert.True(t, admin.Equal(loaded.Admin))
	assert.Equal(t, content.Hash(), loaded.Content.Hash())

	parsed, err := ParseContent(loaded.Content)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/meta.json", parsed.URI)

	wd := &WalletData{Balance: coins(9), Owner: alice, Minter: admin, WalletCode: WalletCode}
	c, err = wd.Cell()
	require.NoError(t, err)
	w, err := LoadWalletData(c)
	require.NoError(t, err)
	assert.True(t, alice.Equal(w.Owner))
	assert.True(t, admin.Equal(w.Minter))

	empty, err := ParseContent(cell.Empty())
	require.NoError(t, err)
	assert.Equal(t, Content{}, empty)
}

func TestWalletAddressIsDeterministic(t *testing.T) {
	a1, err := WalletAddress(0, alice, admin, WalletCode)
	require.NoError(t, err)
	a2, err := WalletAddress(0, alice, admin, WalletCode)
	require.NoError(t, err)
	b, err := WalletAddress(0, bob, admin, WalletCode)
	require.NoError(t, err)
	assert.True(t, a1.Equal(a2))
	assert.False(t, a1.Equal(b))
}

func mintBody(amount uint64) *message.Mint {
	return &message.Mint{
		QueryID:        1,
		To:             alice,
		TotalTonAmount: coins(coin / 20),
		JettonAmount:   coins(amount),
		Inner:          &message.InternalTransfer{QueryID: 1, JettonAmount: coins(amount)},
	}
}

func mintCarrying(total, forward uint64) *message.Mint {
	m := mintBody(1)
	m.TotalTonAmount = coins(total)
	m.Inner.ForwardTonAmount = coins(forward)
	return m
}

func TestMinterMint(t *testing.T) {
	f := newMinter(t, 0)
	ctx := f.context(t, coin)
	require.NoError(t, Minter{}.ReceiveInternal(ctx, internal(t, admin, coin, mintBody(100))))

	data, err := LoadMinterData(ctx.NewData())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), data.TotalSupply.Uint64())

	actions := ctx.Actions()
	require.Len(t, actions, 1)
	expected, err := WalletAddress(0, alice, f.self, WalletCode)
	require.NoError(t, err)
	assert.True(t, expected.Equal(actions[0].Message.Dest))
	assert.NotNil(t, actions[0].Message.Init)
	assert.Equal(t, contract.SendModePayFeesSeparately, actions[0].Mode)

	op, err := message.PeekOpcode(actions[0].Message.Body)
	require.NoError(t, err)
	assert.Equal(t, message.OpInternalTransfer, op)
}

func TestMinterRejections(t *testing.T) {
	foreign := address.New(1, [32]byte{4})
	tests := []struct {
		name  string
		src   *address.Address
		value uint64
		body  message.Body
		code  errors.ErrorCode
	}{
		{"mint by stranger", bob, coin, mintBody(1), errors.ErrCodeUnauthorized},
		{"mint underfunded", admin, coin / 20, mintBody(1), errors.ErrCodeInsufficientValue},
		{"mint leaves wallet without compute", admin, coin, mintCarrying(0, 0), errors.ErrCodeInsufficientValue},
		{"mint below wallet compute", admin, coin, mintCarrying(coin/200, 0), errors.ErrCodeInsufficientValue},
		{"mint total below forward amount", admin, coin, mintCarrying(coin/20, coin/20), errors.ErrCodeInsufficientValue},
		{"mint to other workchain", admin, coin, &message.Mint{To: foreign, TotalTonAmount: coins(0), JettonAmount: coins(1), Inner: &message.InternalTransfer{JettonAmount: coins(1)}}, errors.ErrCodeWrongWorkchain},
		{"mint inner amount differs", admin, coin, &message.Mint{To: alice, TotalTonAmount: coins(0), JettonAmount: coins(2), Inner: &message.InternalTransfer{JettonAmount: coins(1)}}, errors.ErrCodeMalformedMessage},
		{"change admin by stranger", bob, coin, &message.ChangeAdmin{NewAdmin: bob}, errors.ErrCodeUnauthorized},
		{"change content by stranger", bob, coin, &message.ChangeContent{Content: cell.Empty()}, errors.ErrCodeUnauthorized},
		{"burn notification from stranger", bob, coin, &message.BurnNotification{JettonAmount: coins(1), Owner: alice}, errors.ErrCodeAddressMismatch},
		{"transfer sent to minter", admin, coin, &message.Transfer{JettonAmount: coins(1), To: bob}, errors.ErrCodeMalformedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMinter(t, 10)
			ctx := f.context(t, tt.value)
			err := Minter{}.ReceiveInternal(ctx, internal(t, tt.src, tt.value, tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestMinterChangeAdmin(t *testing.T) {
	f := newMinter(t, 0)
	ctx := f.context(t, coin)
	require.NoError(t, Minter{}.ReceiveInternal(ctx, internal(t, admin, coin, &message.ChangeAdmin{NewAdmin: bob})))
	data, err := LoadMinterData(ctx.NewData())
	require.NoError(t, err)
	assert.True(t, bob.Equal(data.Admin))
}

func TestMinterBurnNotification(t *testing.T) {
	f := newMinter(t, 10)
	wallet, err := WalletAddress(0, alice, f.self, WalletCode)
	require.NoError(t, err)

	ctx := f.context(t, coin)
	body := &message.BurnNotification{QueryID: 5, JettonAmount: coins(4), Owner: alice, ResponseAddress: alice}
	require.NoError(t, Minter{}.ReceiveInternal(ctx, internal(t, wallet, coin, body)))

	data, err := LoadMinterData(ctx.NewData())
	require.NoError(t, err)
	assert.Equal(t, uint64(6), data.TotalSupply.Uint64())

	actions := ctx.Actions()
	require.Len(t, actions, 1)
	assert.True(t, alice.Equal(actions[0].Message.Dest))
	assert.True(t, actions[0].Mode.Has(contract.SendModeCarryRemainingValue))
	op, err := message.PeekOpcode(actions[0].Message.Body)
	require.NoError(t, err)
	assert.Equal(t, message.OpExcesses, op)
}

func TestMinterRevertsBouncedMint(t *testing.T) {
	f := newMinter(t, 10)
	original := message.MustEncode(&message.InternalTransfer{QueryID: 1, JettonAmount: coins(7)})
	ctx := f.context(t, coin)
	msg := &message.Internal{Bounced: true, Src: alice, Value: coins(coin), Body: message.BounceBody(original)}
	require.NoError(t, Minter{}.ReceiveInternal(ctx, msg))

	data, err := LoadMinterData(ctx.NewData())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), data.TotalSupply.Uint64())
}

func TestWalletTransfer(t *testing.T) {
	ctx := walletContext(t, alice, admin, 50, coin)
	body := &message.Transfer{QueryID: 9, JettonAmount: coins(20), To: bob, ResponseAddress: alice, ForwardTonAmount: coins(0)}
	require.NoError(t, Wallet{}.ReceiveInternal(ctx, internal(t, alice, coin, body)))

	data, err := LoadWalletData(ctx.NewData())
	require.NoError(t, err)
	assert.Equal(t, uint64(30), data.Balance.Uint64())

	actions := ctx.Actions()
	require.Len(t, actions, 1)
	peer, err := WalletAddress(0, bob, admin, WalletCode)
	require.NoError(t, err)
	assert.True(t, peer.Equal(actions[0].Message.Dest))
	assert.True(t, actions[0].Mode.Has(contract.SendModeCarryRemainingValue))
	assert.NotNil(t, actions[0].Message.Init)
}

func TestWalletRejections(t *testing.T) {
	tests := []struct {
		name  string
		src   *address.Address
		value uint64
		body  message.Body
		code  errors.ErrorCode
	}{
		{"transfer by stranger", bob, coin, &message.Transfer{JettonAmount: coins(1), To: bob}, errors.ErrCodeUnauthorized},
		{"transfer above balance", alice, coin, &message.Transfer{JettonAmount: coins(51), To: bob}, errors.ErrCodeInsufficientBalance},
		{"transfer underfunded", alice, 1, &message.Transfer{JettonAmount: coins(1), To: bob}, errors.ErrCodeInsufficientValue},
		{"burn by stranger", bob, coin, &message.Burn{JettonAmount: coins(1)}, errors.ErrCodeUnauthorized},
		{"burn above balance", alice, coin, &message.Burn{JettonAmount: coins(51)}, errors.ErrCodeInsufficientBalance},
		{"credit from stranger", bob, coin, &message.InternalTransfer{JettonAmount: coins(1), From: bob}, errors.ErrCodeAddressMismatch},
		{"credit without sender", bob, coin, &message.InternalTransfer{JettonAmount: coins(1)}, errors.ErrCodeAddressMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := walletContext(t, alice, admin, 50, tt.value)
			err := Wallet{}.ReceiveInternal(ctx, internal(t, tt.src, tt.value, tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			assert.Nil(t, ctx.NewData())
		})
	}
}

func TestWalletCreditFromPeer(t *testing.T) {
	peer, err := WalletAddress(0, bob, admin, WalletCode)
	require.NoError(t, err)
	ctx := walletContext(t, alice, admin, 0, coin)
	body := &message.InternalTransfer{
		QueryID:          3,
		JettonAmount:     coins(5),
		From:             bob,
		ResponseAddress:  bob,
		ForwardTonAmount: coins(coin / 100),
	}
	require.NoError(t, Wallet{}.ReceiveInternal(ctx, internal(t, peer, coin, body)))

	data, err := LoadWalletData(ctx.NewData())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), data.Balance.Uint64())

	actions := ctx.Actions()
	require.Len(t, actions, 2)
	assert.True(t, alice.Equal(actions[0].Message.Dest))
	op, err := message.PeekOpcode(actions[0].Message.Body)
	require.NoError(t, err)
	assert.Equal(t, message.OpTransferNotification, op)
	assert.Equal(t, uint64(coin/100), actions[0].Message.Value.Uint64())

	assert.True(t, bob.Equal(actions[1].Message.Dest))
	// value minus compute, forward amount and the notification's forward fee
	assert.Equal(t, uint64(coin-10_000_000-10_000_000-1_000_000), actions[1].Message.Value.Uint64())
}

func TestWalletRestoresBouncedTransfer(t *testing.T) {
	ctx := walletContext(t, alice, admin, 30, coin)
	original := message.MustEncode(&message.InternalTransfer{QueryID: 1, JettonAmount: coins(20), From: alice})
	msg := &message.Internal{Bounced: true, Src: bob, Value: coins(coin), Body: message.BounceBody(original)}
	require.NoError(t, Wallet{}.ReceiveInternal(ctx, msg))

	data, err := LoadWalletData(ctx.NewData())
	require.NoError(t, err)
	assert.Equal(t, uint64(50), data.Balance.Uint64())
}

func TestActorsRejectExternalMessages(t *testing.T) {
	f := newMinter(t, 0)
	err := Minter{}.ReceiveExternal(f.context(t, 0), cell.Empty())
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(err))

	err = Wallet{}.ReceiveExternal(walletContext(t, alice, admin, 0, 0), cell.Empty())
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(err))
}

func TestGetMethods(t *testing.T) {
	f := newMinter(t, 77)
	data, err := f.data.Cell()
	require.NoError(t, err)
	q := &contract.Query{Self: f.self, Data: data}

	out, err := Minter{}.GetMethods()["get_jetton_data"](q)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, uint64(77), out[0].(*uint256.Int).Uint64())
	assert.Equal(t, true, out[1])

	ownerCell, err := address.Cell(alice)
	require.NoError(t, err)
	out, err = Minter{}.GetMethods()["get_wallet_address"](q, ownerCell)
	require.NoError(t, err)
	expected, err := WalletAddress(0, alice, f.self, WalletCode)
	require.NoError(t, err)
	assert.True(t, expected.Equal(out[0].(*address.Address)))

	_, err = Minter{}.GetMethods()["get_wallet_address"](q, "alice")
	assert.Error(t, err)
}
