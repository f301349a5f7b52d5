package interpreter

import (
	"bytes"
	"fmt"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
)

// dispatch executes a non-push op on an executing branch. Conditionals are
// also dispatched on non-executing branches to keep nesting balanced.
func (e *Engine) dispatch(op script.Op) error {
	code := op.Code()
	switch code {
	// Flow control.
	case script.OpNOP:
		return nil
	case script.OpIF, script.OpNOTIF:
		return e.opIf(code == script.OpNOTIF)
	case script.OpELSE:
		return e.opElse()
	case script.OpENDIF:
		return e.opEndIf()
	case script.OpVERIFY:
		return e.verify(code)
	case script.OpRETURN:
		return ErrEarlyReturn

	// Stack.
	case script.OpTOALTSTACK:
		v, err := e.dstack.pop()
		if err != nil {
			return err
		}
		e.astack.push(v)
		return nil
	case script.OpFROMALTSTACK:
		v, err := e.astack.pop()
		if err != nil {
			return fmt.Errorf("alt stack: %w", err)
		}
		e.dstack.push(v)
		return nil
	case script.Op2DROP:
		return e.dstack.dropN(2)
	case script.Op2DUP:
		return e.dstack.dupN(2)
	case script.Op3DUP:
		return e.dstack.dupN(3)
	case script.Op2OVER:
		return e.dstack.overN(2)
	case script.Op2ROT:
		return e.dstack.rotN(2)
	case script.Op2SWAP:
		return e.dstack.swapN(2)
	case script.OpIFDUP:
		v, err := e.dstack.peek(0)
		if err != nil {
			return err
		}
		if script.AsBool(v) {
			e.dstack.push(v)
		}
		return nil
	case script.OpDEPTH:
		e.dstack.pushNum(script.Num(e.dstack.depth()))
		return nil
	case script.OpDROP:
		return e.dstack.dropN(1)
	case script.OpDUP:
		return e.dstack.dupN(1)
	case script.OpNIP:
		_, err := e.dstack.nip(1)
		return err
	case script.OpOVER:
		return e.dstack.overN(1)
	case script.OpPICK, script.OpROLL:
		n, err := e.dstack.popInt()
		if err != nil {
			return err
		}
		if code == script.OpPICK {
			return e.dstack.pickN(int(n.Int32()))
		}
		return e.dstack.rollN(int(n.Int32()))
	case script.OpROT:
		return e.dstack.rotN(1)
	case script.OpSWAP:
		return e.dstack.swapN(1)
	case script.OpTUCK:
		return e.dstack.tuck()

	// Splice and bitwise.
	case script.OpCAT:
		return e.opCat()
	case script.OpSPLIT:
		return e.opSplit()
	case script.OpNUM2BIN:
		return e.opNum2Bin()
	case script.OpBIN2NUM:
		return e.opBin2Num()
	case script.OpSIZE:
		v, err := e.dstack.peek(0)
		if err != nil {
			return err
		}
		e.dstack.pushNum(script.Num(len(v)))
		return nil
	case script.OpAND, script.OpOR, script.OpXOR:
		return e.opBitwise(code)
	case script.OpEQUAL, script.OpEQUALVERIFY:
		b, err := e.dstack.pop()
		if err != nil {
			return err
		}
		a, err := e.dstack.pop()
		if err != nil {
			return err
		}
		e.dstack.pushBool(bytes.Equal(a, b))
		if code == script.OpEQUALVERIFY {
			return e.verify(code)
		}
		return nil

	// Arithmetic.
	case script.Op1ADD, script.Op1SUB, script.OpNEGATE, script.OpABS,
		script.OpNOT, script.Op0NOTEQUAL:
		return e.opUnaryNum(code)
	case script.OpADD, script.OpSUB, script.OpDIV, script.OpMOD,
		script.OpBOOLAND, script.OpBOOLOR, script.OpNUMEQUAL,
		script.OpNUMEQUALVERIFY, script.OpNUMNOTEQUAL, script.OpLESSTHAN,
		script.OpGREATERTHAN, script.OpLESSTHANOREQUAL,
		script.OpGREATERTHANOREQUAL, script.OpMIN, script.OpMAX:
		return e.opBinaryNum(code)
	case script.OpWITHIN:
		return e.opWithin()

	// Crypto.
	case script.OpRIPEMD160:
		return e.hashTop(hashing.Ripemd160)
	case script.OpSHA1:
		return e.hashTop(hashing.Sha1)
	case script.OpSHA256:
		return e.hashTop(hashing.Sha256)
	case script.OpHASH160:
		return e.hashTop(hashing.Hash160)
	case script.OpHASH256:
		return e.hashTop(hashing.DoubleHashBytes)
	case script.OpCODESEPARATOR:
		e.lastCodeSep = e.scriptOff + 1
		return nil
	case script.OpCHECKSIG, script.OpCHECKSIGVERIFY:
		return e.opCheckSig(code)
	case script.OpCHECKMULTISIG, script.OpCHECKMULTISIGVERIFY:
		return e.opCheckMultiSig(code)
	case script.OpCHECKDATASIG, script.OpCHECKDATASIGVERIFY:
		return e.opCheckDataSig(code)

	// Locktime and expansion.
	case script.OpCHECKLOCKTIMEVERIFY:
		if !e.flags.has(FlagCheckLockTimeVerify) {
			return e.upgradableNop(code)
		}
		return e.opCheckLockTimeVerify()
	case script.OpCHECKSEQUENCEVERIFY:
		if !e.flags.has(FlagCheckSequenceVerify) {
			return e.upgradableNop(code)
		}
		return e.opCheckSequenceVerify()
	case script.OpNOP1, script.OpNOP4, script.OpNOP5, script.OpNOP6,
		script.OpNOP7, script.OpNOP8, script.OpNOP9, script.OpNOP10:
		return e.upgradableNop(code)
	}

	// OP_RESERVED, OP_VER, OP_RESERVED1 and OP_RESERVED2.
	return fmt.Errorf("%w: %s", ErrReservedOpcode, code)
}

func (e *Engine) upgradableNop(code script.Opcode) error {
	if e.flags.has(FlagDiscourageUpgradableNops) {
		return fmt.Errorf("%w: %s", ErrUpgradableNop, code)
	}
	return nil
}

// verify pops the top item and fails unless it is true.
func (e *Engine) verify(code script.Opcode) error {
	ok, err := e.dstack.popBool()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrVerify, code)
	}
	return nil
}

func (e *Engine) opIf(negate bool) error {
	cond := condSkip
	if e.isBranchExecuting() {
		ok, err := e.dstack.popBool()
		if err != nil {
			return err
		}
		cond = condFalse
		if ok != negate {
			cond = condTrue
		}
	}
	e.condStack = append(e.condStack, cond)
	return nil
}

func (e *Engine) opElse() error {
	if len(e.condStack) == 0 {
		return fmt.Errorf("%w: OP_ELSE without OP_IF", ErrUnbalancedConditional)
	}
	i := len(e.condStack) - 1
	switch e.condStack[i] {
	case condTrue:
		e.condStack[i] = condFalse
	case condFalse:
		e.condStack[i] = condTrue
	}
	return nil
}

func (e *Engine) opEndIf() error {
	if len(e.condStack) == 0 {
		return fmt.Errorf("%w: OP_ENDIF without OP_IF", ErrUnbalancedConditional)
	}
	e.condStack = e.condStack[:len(e.condStack)-1]
	return nil
}

func (e *Engine) opCat() error {
	b, err := e.dstack.pop()
	if err != nil {
		return err
	}
	a, err := e.dstack.pop()
	if err != nil {
		return err
	}
	if len(a)+len(b) > MaxScriptElementSize {
		return fmt.Errorf("%w: OP_CAT result %d bytes", ErrElementTooBig, len(a)+len(b))
	}
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	e.dstack.push(append(out, b...))
	return nil
}

func (e *Engine) opSplit() error {
	n, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	data, err := e.dstack.pop()
	if err != nil {
		return err
	}
	if n < 0 || int64(n) > int64(len(data)) {
		return fmt.Errorf("%w: split at %d of %d bytes", ErrInvalidOperand, n, len(data))
	}
	e.dstack.push(append([]byte(nil), data[:n]...))
	e.dstack.push(append([]byte(nil), data[n:]...))
	return nil
}

// minimallyEncode strips redundant trailing zero bytes from a number while
// preserving its sign.
func minimallyEncode(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}
	out := append([]byte(nil), v...)
	last := out[len(out)-1]
	if last&0x7f != 0 {
		return out
	}
	if len(out) == 1 {
		return nil
	}
	if out[len(out)-2]&0x80 != 0 {
		return out
	}
	for i := len(out) - 1; i > 0; i-- {
		if out[i-1] != 0 {
			if out[i-1]&0x80 != 0 {
				out[i] = last
				return out[:i+1]
			}
			out[i-1] |= last
			return out[:i]
		}
	}
	return nil
}

func (e *Engine) opNum2Bin() error {
	size, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	if size < 0 || size > MaxScriptElementSize {
		return fmt.Errorf("%w: NUM2BIN size %d", ErrInvalidOperand, size)
	}
	raw, err := e.dstack.pop()
	if err != nil {
		return err
	}

	num := minimallyEncode(raw)
	if int64(len(num)) > int64(size) {
		return fmt.Errorf("%w: %d bytes do not fit in %d", ErrInvalidOperand, len(num), size)
	}
	if int64(len(num)) == int64(size) {
		e.dstack.push(num)
		return nil
	}

	out := make([]byte, size)
	var sign byte
	if len(num) > 0 {
		sign = num[len(num)-1] & 0x80
		num[len(num)-1] &= 0x7f
		copy(out, num)
	}
	out[len(out)-1] |= sign
	e.dstack.push(out)
	return nil
}

func (e *Engine) opBin2Num() error {
	raw, err := e.dstack.pop()
	if err != nil {
		return err
	}
	num := minimallyEncode(raw)
	if len(num) > script.DefaultNumLen {
		return fmt.Errorf("%w: BIN2NUM result %d bytes", ErrNumberOverflow, len(num))
	}
	e.dstack.push(num)
	return nil
}

func (e *Engine) opBitwise(code script.Opcode) error {
	b, err := e.dstack.pop()
	if err != nil {
		return err
	}
	a, err := e.dstack.pop()
	if err != nil {
		return err
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: %s operands differ in size", ErrInvalidOperand, code)
	}
	out := make([]byte, len(a))
	for i := range a {
		switch code {
		case script.OpAND:
			out[i] = a[i] & b[i]
		case script.OpOR:
			out[i] = a[i] | b[i]
		default:
			out[i] = a[i] ^ b[i]
		}
	}
	e.dstack.push(out)
	return nil
}

func (e *Engine) opUnaryNum(code script.Opcode) error {
	n, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	switch code {
	case script.Op1ADD:
		n++
	case script.Op1SUB:
		n--
	case script.OpNEGATE:
		n = -n
	case script.OpABS:
		if n < 0 {
			n = -n
		}
	case script.OpNOT:
		e.dstack.pushBool(n == 0)
		return nil
	case script.Op0NOTEQUAL:
		e.dstack.pushBool(n != 0)
		return nil
	}
	e.dstack.pushNum(n)
	return nil
}

func (e *Engine) opBinaryNum(code script.Opcode) error {
	b, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	a, err := e.dstack.popInt()
	if err != nil {
		return err
	}

	switch code {
	case script.OpADD:
		e.dstack.pushNum(a + b)
	case script.OpSUB:
		e.dstack.pushNum(a - b)
	case script.OpDIV, script.OpMOD:
		if b == 0 {
			return fmt.Errorf("%w: %s", ErrDivByZero, code)
		}
		if code == script.OpDIV {
			e.dstack.pushNum(a / b)
		} else {
			e.dstack.pushNum(a % b)
		}
	case script.OpBOOLAND:
		e.dstack.pushBool(a != 0 && b != 0)
	case script.OpBOOLOR:
		e.dstack.pushBool(a != 0 || b != 0)
	case script.OpNUMEQUAL:
		e.dstack.pushBool(a == b)
	case script.OpNUMEQUALVERIFY:
		e.dstack.pushBool(a == b)
		return e.verify(code)
	case script.OpNUMNOTEQUAL:
		e.dstack.pushBool(a != b)
	case script.OpLESSTHAN:
		e.dstack.pushBool(a < b)
	case script.OpGREATERTHAN:
		e.dstack.pushBool(a > b)
	case script.OpLESSTHANOREQUAL:
		e.dstack.pushBool(a <= b)
	case script.OpGREATERTHANOREQUAL:
		e.dstack.pushBool(a >= b)
	case script.OpMIN:
		e.dstack.pushNum(min(a, b))
	case script.OpMAX:
		e.dstack.pushNum(max(a, b))
	}
	return nil
}

// opWithin pushes min <= x < max.
func (e *Engine) opWithin() error {
	hi, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	lo, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	x, err := e.dstack.popInt()
	if err != nil {
		return err
	}
	e.dstack.pushBool(lo <= x && x < hi)
	return nil
}

func (e *Engine) hashTop(h func([]byte) []byte) error {
	v, err := e.dstack.pop()
	if err != nil {
		return err
	}
	e.dstack.push(h(v))
	return nil
}
