package interpreter

// Flags selects optional verification rules.
type Flags uint32

const (
	// FlagSigPushOnly requires unlocking scripts to contain only pushes.
	FlagSigPushOnly Flags = 1 << iota

	// FlagMinimalData requires every push and numeric operand to use its
	// smallest encoding.
	FlagMinimalData

	// FlagNullDummy requires the extra CHECKMULTISIG element to be empty.
	FlagNullDummy

	// FlagCleanStack requires exactly one element to remain after
	// evaluation.
	FlagCleanStack

	// FlagCheckLockTimeVerify enables OP_CHECKLOCKTIMEVERIFY. Without it
	// the opcode is OP_NOP2.
	FlagCheckLockTimeVerify

	// FlagCheckSequenceVerify enables OP_CHECKSEQUENCEVERIFY. Without it
	// the opcode is OP_NOP3.
	FlagCheckSequenceVerify

	// FlagDiscourageUpgradableNops fails scripts that execute NOP1 and
	// NOP4..NOP10.
	FlagDiscourageUpgradableNops
)

// StandardFlags are the rules applied to every script the wallet builds or
// accepts from a counterparty.
const StandardFlags = FlagSigPushOnly |
	FlagMinimalData |
	FlagNullDummy |
	FlagCleanStack |
	FlagCheckLockTimeVerify |
	FlagCheckSequenceVerify |
	FlagDiscourageUpgradableNops

// Engine limits.
const (
	MaxOpsPerScript       = 201
	MaxStackSize          = 1000
	MaxScriptElementSize  = 520
	MaxScriptSize         = 10000
	MaxPubKeysPerMultiSig = 20

	// LockTimeThreshold splits locktimes into block heights (below) and
	// unix timestamps.
	LockTimeThreshold = 500000000
)

// Sequence number bits interpreted by OP_CHECKSEQUENCEVERIFY.
const (
	SequenceLockTimeDisabled  = 1 << 31
	SequenceLockTimeIsSeconds = 1 << 22
	SequenceLockTimeMask      = 0x0000ffff
)

func (f Flags) has(flag Flags) bool {
	return f&flag == flag
}
