// Package message defines the wire records actors exchange: jetton operation bodies,
// the internal message envelope, bounced bodies and signed Account commands.
package message

import "fmt"

// Opcode is the 32-bit discriminant at the start of every operation body.
type Opcode uint32

const (
	OpMint                 Opcode = 21
	OpInternalTransfer     Opcode = 0x178d4519
	OpTransfer             Opcode = 0xf8a7ea5
	OpBurn                 Opcode = 0x595f07bc
	OpChangeAdmin          Opcode = 3
	OpChangeContent        Opcode = 4
	OpBurnNotification     Opcode = 0x7bdd97de
	OpTransferNotification Opcode = 0x7362d09c
	OpExcesses             Opcode = 0xd53276db
)

func (op Opcode) String() string {
	switch op {
	case OpMint:
		return "mint"
	case OpInternalTransfer:
		return "internal_transfer"
	case OpTransfer:
		return "transfer"
	case OpBurn:
		return "burn"
	case OpChangeAdmin:
		return "change_admin"
	case OpChangeContent:
		return "change_content"
	case OpBurnNotification:
		return "burn_notification"
	case OpTransferNotification:
		return "transfer_notification"
	case OpExcesses:
		return "excesses"
	default:
		return fmt.Sprintf("unknown(0x%x)", uint32(op))
	}
}
