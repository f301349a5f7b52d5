package interpreter

import (
	"fmt"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/sighash"
	"github.com/bitfsorg/libtrade-go/tx"
)

// checkSig verifies one signature against the current context. Encoding
// violations are errors; a well-formed mismatch is false.
func (e *Engine) checkSig(sig, pubKey []byte) (bool, error) {
	if e.ctx == nil {
		if len(sig) == 0 {
			return false, nil
		}
		return false, ErrNoContext
	}
	ok, err := sighash.Verify(sig, pubKey, e.ctx.Tx, e.ctx.InputIndex,
		e.subScript(), e.ctx.PrevOutput.Value)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	}
	if !ok && len(sig) > 0 {
		e.sigFailed = true
	}
	return ok, nil
}

func (e *Engine) opCheckSig(code script.Opcode) error {
	pubKey, err := e.dstack.pop()
	if err != nil {
		return err
	}
	sig, err := e.dstack.pop()
	if err != nil {
		return err
	}

	ok, err := e.checkSig(sig, pubKey)
	if err != nil {
		return err
	}
	log.Tracef("%v", newLogClosure(func() string {
		return fmt.Sprintf("%s: sig %x pubkey %x valid %v", code, sig, pubKey, ok)
	}))

	if code == script.OpCHECKSIGVERIFY {
		if !ok {
			return fmt.Errorf("%w: %s", ErrSignatureInvalid, code)
		}
		return nil
	}
	e.dstack.pushBool(ok)
	return nil
}

// opCheckMultiSig consumes
// <dummy> <sig1> ... <sigM> <M> <pubkey1> ... <pubkeyN> <N>.
// Signatures must appear in the same order as the keys they match.
func (e *Engine) opCheckMultiSig(code script.Opcode) error {
	n, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	if n < 0 || n > MaxPubKeysPerMultiSig {
		return fmt.Errorf("%w: %d", ErrInvalidKeyCount, n)
	}
	e.numOps += int(n)
	if e.numOps > MaxOpsPerScript {
		return fmt.Errorf("%w: more than %d", ErrTooManyOperations, MaxOpsPerScript)
	}

	pubKeys := make([][]byte, n)
	for i := int(n) - 1; i >= 0; i-- {
		if pubKeys[i], err = e.dstack.pop(); err != nil {
			return err
		}
	}

	m, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	if m < 0 || m > n {
		return fmt.Errorf("%w: %d of %d", ErrInvalidSigCount, m, n)
	}
	sigs := make([][]byte, m)
	for i := int(m) - 1; i >= 0; i-- {
		if sigs[i], err = e.dstack.pop(); err != nil {
			return err
		}
	}

	dummy, err := e.dstack.pop()
	if err != nil {
		return err
	}
	if e.flags.has(FlagNullDummy) && len(dummy) != 0 {
		return fmt.Errorf("%w: %d bytes", ErrNullDummy, len(dummy))
	}

	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < len(sigs) {
		if len(sigs)-sigIdx > len(pubKeys)-keyIdx {
			success = false
			break
		}
		ok, err := e.checkSig(sigs[sigIdx], pubKeys[keyIdx])
		if err != nil {
			return err
		}
		if ok {
			sigIdx++
		}
		keyIdx++
	}

	if !success {
		for _, sig := range sigs {
			if len(sig) > 0 {
				e.sigFailed = true
				break
			}
		}
	}

	if code == script.OpCHECKMULTISIGVERIFY {
		if !success {
			return fmt.Errorf("%w: %s", ErrSignatureInvalid, code)
		}
		return nil
	}
	e.dstack.pushBool(success)
	return nil
}

// opCheckDataSig verifies <sig> <msg> <pubkey> where sig is a bare DER
// signature over sha256(msg).
func (e *Engine) opCheckDataSig(code script.Opcode) error {
	pubKey, err := e.dstack.pop()
	if err != nil {
		return err
	}
	msg, err := e.dstack.pop()
	if err != nil {
		return err
	}
	sig, err := e.dstack.pop()
	if err != nil {
		return err
	}

	ok := false
	if len(sig) > 0 {
		if err := sighash.CheckDEREncoding(sig); err != nil {
			return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		}
		if err := sighash.CheckPubKeyEncoding(pubKey); err != nil {
			return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		}
		if ok, err = sighash.VerifyDigest(sig, pubKey, hashing.Sha256(msg)); err != nil {
			return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		}
		if !ok {
			e.sigFailed = true
		}
	}

	if code == script.OpCHECKDATASIGVERIFY {
		if !ok {
			return fmt.Errorf("%w: %s", ErrSignatureInvalid, code)
		}
		return nil
	}
	e.dstack.pushBool(ok)
	return nil
}

// verifyLockTime fails unless txLockTime has reached lockTime and both are
// of the same kind.
func verifyLockTime(txLockTime, threshold, lockTime int64) error {
	if !((txLockTime < threshold && lockTime < threshold) ||
		(txLockTime >= threshold && lockTime >= threshold)) {
		return fmt.Errorf("%w: mismatched locktime types: tx %d, script %d",
			ErrUnsatisfiedLocktime, txLockTime, lockTime)
	}
	if lockTime > txLockTime {
		return fmt.Errorf("%w: locktime %d not reached, tx has %d",
			ErrUnsatisfiedLocktime, lockTime, txLockTime)
	}
	return nil
}

func (e *Engine) opCheckLockTimeVerify() error {
	if e.ctx == nil {
		return fmt.Errorf("%w: OP_CHECKLOCKTIMEVERIFY", ErrUnsatisfiedLocktime)
	}
	top, err := e.dstack.peek(0)
	if err != nil {
		return err
	}
	lockTime, err := script.MakeNum(top, e.dstack.verifyMinimal, script.LockTimeNumLen)
	if err != nil {
		return err
	}
	if lockTime < 0 {
		return fmt.Errorf("%w: negative locktime %d", ErrUnsatisfiedLocktime, lockTime)
	}

	if err := verifyLockTime(int64(e.ctx.Tx.LockTime()), LockTimeThreshold, int64(lockTime)); err != nil {
		return err
	}

	// A final sequence disables the transaction locktime.
	in, err := e.ctx.Tx.Input(e.ctx.InputIndex)
	if err != nil {
		return err
	}
	if in.Sequence == tx.DefaultSequence {
		return fmt.Errorf("%w: input sequence is final", ErrUnsatisfiedLocktime)
	}
	return nil
}

func (e *Engine) opCheckSequenceVerify() error {
	if e.ctx == nil {
		return fmt.Errorf("%w: OP_CHECKSEQUENCEVERIFY", ErrUnsatisfiedLocktime)
	}
	top, err := e.dstack.peek(0)
	if err != nil {
		return err
	}
	stackSeq, err := script.MakeNum(top, e.dstack.verifyMinimal, script.LockTimeNumLen)
	if err != nil {
		return err
	}
	if stackSeq < 0 {
		return fmt.Errorf("%w: negative sequence %d", ErrUnsatisfiedLocktime, stackSeq)
	}

	seq := int64(stackSeq)
	if seq&SequenceLockTimeDisabled != 0 {
		return nil
	}
	if e.ctx.Tx.Version() < 2 {
		return fmt.Errorf("%w: transaction version %d", ErrUnsatisfiedLocktime, e.ctx.Tx.Version())
	}

	in, err := e.ctx.Tx.Input(e.ctx.InputIndex)
	if err != nil {
		return err
	}
	txSeq := int64(in.Sequence)
	if txSeq&SequenceLockTimeDisabled != 0 {
		return fmt.Errorf("%w: input sequence %x has relative locktime disabled",
			ErrUnsatisfiedLocktime, txSeq)
	}

	const mask = SequenceLockTimeIsSeconds | SequenceLockTimeMask
	return verifyLockTime(txSeq&mask, SequenceLockTimeIsSeconds, seq&mask)
}
