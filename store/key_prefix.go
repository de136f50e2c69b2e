package store

// Declare database key prefix for objects
const (
	PrefixAccount = "account:"

	PrefixTx = "tx:"
	// PrefixAccountTx indexes receipts per account: account key + 8-byte big-endian lt => tx hash
	PrefixAccountTx = "acc_tx:"

	PrefixChainMeta  = "chain_meta:"
	ChainMetaKeyMain = "main"
)
