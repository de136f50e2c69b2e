package contract

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/message"
)

func TestFeesCost(t *testing.T) {
	f := DefaultFees()
	assert.Equal(t, uint64(10_000_000), f.Cost(1, 0).Uint64())
	assert.Equal(t, uint64(1_000_000), f.Cost(0, 1).Uint64())
	assert.Equal(t, uint64(23_000_000), f.Cost(2, 3).Uint64())
	assert.True(t, f.Cost(0, 0).IsZero())
}

func TestRemainingSaturates(t *testing.T) {
	v := uint256.NewInt(100)
	assert.Equal(t, uint64(70), Remaining(v, uint256.NewInt(10), nil, uint256.NewInt(20)).Uint64())
	assert.True(t, Remaining(v, uint256.NewInt(60), uint256.NewInt(60)).IsZero())
	// the input is never modified
	assert.Equal(t, uint64(100), v.Uint64())
}

func TestSendModeString(t *testing.T) {
	tests := []struct {
		mode SendMode
		want string
	}{
		{SendModeOrdinary, "ordinary"},
		{SendModePayFeesSeparately, "ordinary+pay_fees_separately"},
		{SendModeCarryRemainingValue | SendModeIgnoreErrors, "carry_remaining_value+ignore_errors"},
		{SendModeCarryAllBalance, "carry_all_balance"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.String())
	}
	assert.True(t, (SendModeCarryRemainingValue | SendModeIgnoreErrors).Has(SendModeIgnoreErrors))
	assert.False(t, SendModePayFeesSeparately.Has(SendModeIgnoreErrors))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(TreasuryCode, Treasury{})

	c, err := r.Lookup(TreasuryCode)
	require.NoError(t, err)
	assert.Equal(t, "treasury", c.Name())

	// same name and version hash the same
	c, err = r.Lookup(NewCode("treasury", 1))
	require.NoError(t, err)
	assert.Equal(t, "treasury", c.Name())

	_, err = r.Lookup(NewCode("treasury", 2))
	assert.Error(t, err)
	_, err = r.Lookup(nil)
	assert.Error(t, err)
}

func TestArgAddress(t *testing.T) {
	a := address.New(0, [32]byte{9})
	got, err := ArgAddress([]any{a}, 0)
	require.NoError(t, err)
	assert.True(t, a.Equal(got))

	c, err := address.Cell(a)
	require.NoError(t, err)
	got, err = ArgAddress([]any{"x", c}, 1)
	require.NoError(t, err)
	assert.True(t, a.Equal(got))

	_, err = ArgAddress([]any{}, 0)
	assert.Error(t, err)
	_, err = ArgAddress([]any{42}, 0)
	assert.Error(t, err)
}

func TestContextCollectsActions(t *testing.T) {
	self := address.New(0, [32]byte{1})
	ctx := NewContext(self, TreasuryCode, TreasuryData("x"), uint256.NewInt(5), nil, 10, 2, DefaultFees())
	assert.True(t, ctx.MsgValue.IsZero())
	assert.Equal(t, int32(0), ctx.Workchain())
	assert.Nil(t, ctx.NewData())
	assert.False(t, ctx.Accepted())

	dest := address.New(0, [32]byte{2})
	require.NoError(t, ctx.SendBody(SendModeCarryRemainingValue, dest, nil, false, nil, &message.Excesses{QueryID: 4}))
	ctx.Send(SendModeOrdinary, &message.Internal{Dest: dest, Value: uint256.NewInt(1), Body: cell.Empty()})
	ctx.SetData(cell.Empty())
	ctx.Accept()

	actions := ctx.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, SendModeCarryRemainingValue, actions[0].Mode)
	op, err := message.PeekOpcode(actions[0].Message.Body)
	require.NoError(t, err)
	assert.Equal(t, message.OpExcesses, op)
	assert.NotNil(t, ctx.NewData())
	assert.True(t, ctx.Accepted())
}

func TestTreasury(t *testing.T) {
	assert.NotEqual(t, TreasuryData("a").Hash(), TreasuryData("b").Hash())

	err := Treasury{}.ReceiveExternal(nil, cell.Empty())
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(err))
	assert.NoError(t, Treasury{}.ReceiveInternal(nil, &message.Internal{}))

	out, err := Treasury{}.GetMethods()["balance"](&Query{Balance: uint256.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), out[0].(*uint256.Int).Uint64())
}
