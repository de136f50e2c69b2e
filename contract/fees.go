package contract

import "github.com/holiman/uint256"

const (
	DefaultComputeFeeNano uint64 = 10_000_000 // 0.01
	DefaultForwardFeeNano uint64 = 1_000_000  // 0.001
)

// Fees is the flat fee schedule: one compute charge per transaction and one
// forward charge per outgoing message.
type Fees struct {
	Compute *uint256.Int
	Forward *uint256.Int
}

func DefaultFees() Fees {
	return Fees{
		Compute: uint256.NewInt(DefaultComputeFeeNano),
		Forward: uint256.NewInt(DefaultForwardFeeNano),
	}
}

// Cost returns computeCount*Compute + forwardCount*Forward.
func (f Fees) Cost(computeCount, forwardCount uint64) *uint256.Int {
	c := new(uint256.Int).Mul(f.Compute, uint256.NewInt(computeCount))
	fw := new(uint256.Int).Mul(f.Forward, uint256.NewInt(forwardCount))
	return c.Add(c, fw)
}

// Remaining subtracts spent from value, stopping at zero.
func Remaining(value *uint256.Int, spent ...*uint256.Int) *uint256.Int {
	out := new(uint256.Int).Set(value)
	for _, s := range spent {
		if s == nil {
			continue
		}
		if out.Lt(s) {
			return new(uint256.Int)
		}
		out.Sub(out, s)
	}
	return out
}
