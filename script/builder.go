package script

// Builder assembles a script op by op. The first error encountered is kept
// and returned by Script; later calls become no-ops.
//
//	s, err := script.NewBuilder().
//		AddOp(script.OpDUP).
//		AddOp(script.OpHASH160).
//		AddData(hash).
//		Script()
type Builder struct {
	ops Script
	err error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddOp appends a non-data opcode.
func (b *Builder) AddOp(code Opcode) *Builder {
	if b.err != nil {
		return b
	}
	op := CodeOp(code)
	if op.IsInvalid() {
		b.err = ErrInvalidTemplate
		return b
	}
	b.ops = append(b.ops, op)
	return b
}

// AddData appends the canonical push of data.
func (b *Builder) AddData(data []byte) *Builder {
	if b.err != nil {
		return b
	}
	op, err := PushOp(data)
	if err != nil {
		b.err = err
		return b
	}
	b.ops = append(b.ops, op)
	return b
}

// AddInt64 appends the minimal push of a script number.
func (b *Builder) AddInt64(v int64) *Builder {
	if b.err != nil {
		return b
	}
	if v == 0 || (v >= 1 && v <= 16) {
		b.ops = append(b.ops, CodeOp(SmallIntOpcode(int(v))))
		return b
	}
	if v == -1 {
		b.ops = append(b.ops, CodeOp(Op1NEGATE))
		return b
	}
	return b.AddData(Num(v).Bytes())
}

// AddScript appends every op of s.
func (b *Builder) AddScript(s Script) *Builder {
	if b.err != nil {
		return b
	}
	b.ops = append(b.ops, s.Clone()...)
	return b
}

// Script returns the assembled script or the first error.
func (b *Builder) Script() (Script, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.ops.Clone(), nil
}
