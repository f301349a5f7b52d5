package interpreter

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/libtrade-go/script"
)

// Top-level failure kinds. Every error returned by the engine matches one
// of these with errors.Is.
var (
	// ErrMalformedScript indicates a structurally invalid op stream.
	ErrMalformedScript = errors.New("interpreter: malformed script")

	// ErrStackUnderflow indicates an op needed more stack items than present.
	ErrStackUnderflow = errors.New("interpreter: stack underflow")

	// ErrDisabledOpcode indicates a frozen opcode appeared in the script.
	ErrDisabledOpcode = errors.New("interpreter: disabled opcode")

	// ErrPushNonMinimalData indicates a push or numeric operand that is not
	// minimally encoded.
	ErrPushNonMinimalData = script.ErrPushNonMinimalData

	// ErrNumberOverflow indicates a numeric operand wider than allowed.
	ErrNumberOverflow = script.ErrNumberOverflow

	// ErrScriptEvaluationFailed indicates the script ran but did not succeed.
	ErrScriptEvaluationFailed = errors.New("interpreter: script evaluation failed")

	// ErrSignatureInvalid indicates a signature or public key failed
	// encoding checks or verification.
	ErrSignatureInvalid = errors.New("interpreter: signature invalid")
)

// Specific failures, each wrapping one of the kinds above.
var (
	ErrUnbalancedConditional = fmt.Errorf("%w: unbalanced conditional", ErrMalformedScript)
	ErrReservedOpcode        = fmt.Errorf("%w: reserved opcode", ErrMalformedScript)
	ErrInvalidOp             = fmt.Errorf("%w: invalid op", ErrMalformedScript)
	ErrNotPushOnly           = fmt.Errorf("%w: unlocking script is not push only", ErrMalformedScript)
	ErrScriptTooBig          = fmt.Errorf("%w: script size exceeds limit", ErrMalformedScript)

	ErrTooManyOperations   = fmt.Errorf("%w: too many operations", ErrScriptEvaluationFailed)
	ErrStackOverflow       = fmt.Errorf("%w: stack size exceeds limit", ErrScriptEvaluationFailed)
	ErrElementTooBig       = fmt.Errorf("%w: element size exceeds limit", ErrScriptEvaluationFailed)
	ErrEarlyReturn         = fmt.Errorf("%w: OP_RETURN executed", ErrScriptEvaluationFailed)
	ErrVerify              = fmt.Errorf("%w: verify failed", ErrScriptEvaluationFailed)
	ErrCleanStack          = fmt.Errorf("%w: stack not clean", ErrScriptEvaluationFailed)
	ErrEmptyStack          = fmt.Errorf("%w: empty stack", ErrScriptEvaluationFailed)
	ErrFalseStackEntry     = fmt.Errorf("%w: false stack entry", ErrScriptEvaluationFailed)
	ErrDivByZero           = fmt.Errorf("%w: division by zero", ErrScriptEvaluationFailed)
	ErrInvalidOperand      = fmt.Errorf("%w: invalid operand", ErrScriptEvaluationFailed)
	ErrInvalidKeyCount     = fmt.Errorf("%w: invalid public key count", ErrScriptEvaluationFailed)
	ErrInvalidSigCount     = fmt.Errorf("%w: invalid signature count", ErrScriptEvaluationFailed)
	ErrNullDummy           = fmt.Errorf("%w: multisig dummy not empty", ErrScriptEvaluationFailed)
	ErrUnsatisfiedLocktime = fmt.Errorf("%w: unsatisfied locktime", ErrScriptEvaluationFailed)
	ErrUpgradableNop       = fmt.Errorf("%w: upgradable NOP executed", ErrScriptEvaluationFailed)

	ErrNoContext = fmt.Errorf("%w: no transaction context", ErrSignatureInvalid)
)
