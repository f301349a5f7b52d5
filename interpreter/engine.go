// Package interpreter executes scripts against an explicit transaction
// context: an unlocking script followed by the locking script it spends,
// evaluated on a value stack with a branch-condition stack.
package interpreter

import (
	"fmt"

	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

// Context carries everything signature and locktime opcodes need: the
// spending transaction, the input being validated and the output it spends.
type Context struct {
	Tx         *tx.Transaction
	InputIndex int
	PrevOutput tx.Output
}

// Branch states on the condition stack.
const (
	condFalse = iota
	condTrue
	condSkip
)

// Engine runs one unlocking/locking script pair. It is single use.
type Engine struct {
	scripts     [2]script.Script
	scriptIdx   int
	scriptOff   int
	lastCodeSep int
	dstack      stack
	astack      stack
	condStack   []int
	numOps      int
	flags       Flags
	ctx         *Context
	sigFailed   bool
}

// NewEngine prepares unlock followed by lock for execution. ctx may be nil
// for scripts without signature or locktime opcodes.
func NewEngine(unlock, lock script.Script, ctx *Context, flags Flags) (*Engine, error) {
	if unlock.Size() > MaxScriptSize || lock.Size() > MaxScriptSize {
		return nil, ErrScriptTooBig
	}
	if flags.has(FlagSigPushOnly) && !unlock.IsPushOnly() {
		return nil, ErrNotPushOnly
	}
	if ctx != nil && (ctx.Tx == nil || ctx.InputIndex < 0 || ctx.InputIndex >= ctx.Tx.NumInputs()) {
		return nil, fmt.Errorf("%w: input index %d out of range", ErrMalformedScript, ctx.InputIndex)
	}

	e := &Engine{
		scripts: [2]script.Script{unlock.Clone(), lock.Clone()},
		flags:   flags,
		ctx:     ctx,
	}
	e.dstack.verifyMinimal = flags.has(FlagMinimalData)
	e.astack.verifyMinimal = flags.has(FlagMinimalData)
	e.skipEmpty()
	return e, nil
}

// skipEmpty moves past scripts with no ops.
func (e *Engine) skipEmpty() {
	for e.scriptIdx < len(e.scripts) && e.scriptOff >= len(e.scripts[e.scriptIdx]) {
		e.scriptIdx++
		e.scriptOff = 0
	}
}

// done reports whether every op has been executed.
func (e *Engine) done() bool {
	return e.scriptIdx >= len(e.scripts)
}

func (e *Engine) isBranchExecuting() bool {
	return len(e.condStack) == 0 || e.condStack[len(e.condStack)-1] == condTrue
}

// Step executes the next op. done is true once the last op has run.
func (e *Engine) Step() (done bool, err error) {
	if e.done() {
		return true, nil
	}
	op := e.scripts[e.scriptIdx][e.scriptOff]

	if err := e.executeOp(op); err != nil {
		return true, err
	}
	if e.dstack.depth()+e.astack.depth() > MaxStackSize {
		return true, ErrStackOverflow
	}

	e.scriptOff++
	if e.scriptOff >= len(e.scripts[e.scriptIdx]) {
		// A conditional may not straddle the two scripts.
		if len(e.condStack) != 0 {
			return true, fmt.Errorf("%w: missing OP_ENDIF", ErrUnbalancedConditional)
		}
		_ = e.astack.dropN(e.astack.depth())
		e.numOps = 0
		e.lastCodeSep = 0
		e.scriptIdx++
		e.scriptOff = 0
		e.skipEmpty()
	}
	return e.done(), nil
}

// Execute runs the scripts to completion and reports whether they
// succeeded.
func (e *Engine) Execute() error {
	for !e.done() {
		log.Tracef("%v", newLogClosure(func() string {
			return fmt.Sprintf("stepping %02x:%04x: %s", e.scriptIdx, e.scriptOff,
				e.scripts[e.scriptIdx][e.scriptOff])
		}))

		if _, err := e.Step(); err != nil {
			return err
		}

		log.Tracef("%v", newLogClosure(func() string {
			var dstr, astr string
			if e.dstack.depth() != 0 {
				dstr = "Stack:\n" + e.dstack.String()
			}
			if e.astack.depth() != 0 {
				astr = "AltStack:\n" + e.astack.String()
			}
			return dstr + astr
		}))
	}
	return e.checkFinal()
}

// checkFinal applies the success condition: one truthy element.
func (e *Engine) checkFinal() error {
	if e.flags.has(FlagCleanStack) && e.dstack.depth() > 1 {
		return fmt.Errorf("%w: %d elements remain", ErrCleanStack, e.dstack.depth())
	}
	if e.dstack.depth() == 0 {
		return ErrEmptyStack
	}

	v, _ := e.dstack.pop()
	if script.AsBool(v) {
		return nil
	}

	log.Tracef("%v", newLogClosure(func() string {
		return fmt.Sprintf("scripts failed: unlock: %s lock: %s", e.scripts[0], e.scripts[1])
	}))
	if e.sigFailed {
		return fmt.Errorf("%w: signature check returned false", ErrSignatureInvalid)
	}
	return ErrFalseStackEntry
}

// Stack returns a bottom-up copy of the data stack.
func (e *Engine) Stack() [][]byte {
	return e.dstack.snapshot()
}

// subScript returns the executing script from the last OP_CODESEPARATOR.
func (e *Engine) subScript() script.Script {
	return e.scripts[e.scriptIdx][e.lastCodeSep:]
}

// executeOp applies the rules every op is subject to and dispatches to its
// handler when the current branch is executing.
func (e *Engine) executeOp(op script.Op) error {
	if op.IsInvalid() {
		return fmt.Errorf("%w: %s", ErrInvalidOp, op)
	}
	code := op.Code()

	// Disabled and always-illegal opcodes fail even in unexecuted branches.
	if code.IsDisabled() {
		return fmt.Errorf("%w: %s", ErrDisabledOpcode, code)
	}
	if code == script.OpVERIF || code == script.OpVERNOTIF {
		return fmt.Errorf("%w: %s", ErrReservedOpcode, code)
	}

	if op.Kind() == script.KindPush {
		if data, _ := op.PushedValue(); len(data) > MaxScriptElementSize {
			return fmt.Errorf("%w: %d bytes", ErrElementTooBig, len(data))
		}
	}

	if code > script.Op16 {
		e.numOps++
		if e.numOps > MaxOpsPerScript {
			return fmt.Errorf("%w: more than %d", ErrTooManyOperations, MaxOpsPerScript)
		}
	}

	if !e.isBranchExecuting() && !isConditional(code) {
		return nil
	}

	if op.IsPush() {
		if e.flags.has(FlagMinimalData) && !op.IsMinimalPush() {
			return fmt.Errorf("%w: %s", ErrPushNonMinimalData, op)
		}
		data, _ := op.PushedValue()
		e.dstack.push(data)
		return nil
	}

	return e.dispatch(op)
}

func isConditional(code script.Opcode) bool {
	switch code {
	case script.OpIF, script.OpNOTIF, script.OpELSE, script.OpENDIF:
		return true
	}
	return false
}
