package interpreter

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bitfsorg/libtrade-go/script"
)

// stack is a stack of byte slices. Index 0 of peek/pick-style helpers
// refers to the top item.
type stack struct {
	items         [][]byte
	verifyMinimal bool
}

func (s *stack) depth() int { return len(s.items) }

func (s *stack) push(v []byte) { s.items = append(s.items, v) }

func (s *stack) pushNum(n script.Num) { s.push(n.Bytes()) }

func (s *stack) pushBool(b bool) { s.push(script.FromBool(b)) }

func (s *stack) need(n int) error {
	if n > len(s.items) {
		return fmt.Errorf("%w: need %d items, have %d", ErrStackUnderflow, n, len(s.items))
	}
	return nil
}

func (s *stack) pop() ([]byte, error) {
	if err := s.need(1); err != nil {
		return nil, err
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// peek returns the item idx positions below the top without removing it.
func (s *stack) peek(idx int) ([]byte, error) {
	if idx < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ErrInvalidOperand, idx)
	}
	if err := s.need(idx + 1); err != nil {
		return nil, err
	}
	return s.items[len(s.items)-1-idx], nil
}

func (s *stack) popNum(maxLen int) (script.Num, error) {
	v, err := s.pop()
	if err != nil {
		return 0, err
	}
	return script.MakeNum(v, s.verifyMinimal, maxLen)
}

func (s *stack) popInt() (script.Num, error) {
	return s.popNum(script.DefaultNumLen)
}

func (s *stack) popBool() (bool, error) {
	v, err := s.pop()
	if err != nil {
		return false, err
	}
	return script.AsBool(v), nil
}

// nip removes the item idx positions below the top and returns it.
func (s *stack) nip(idx int) ([]byte, error) {
	if idx < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ErrInvalidOperand, idx)
	}
	if err := s.need(idx + 1); err != nil {
		return nil, err
	}
	i := len(s.items) - 1 - idx
	v := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return v, nil
}

// dropN removes the top n items.
func (s *stack) dropN(n int) error {
	if err := s.need(n); err != nil {
		return err
	}
	s.items = s.items[:len(s.items)-n]
	return nil
}

// dupN duplicates the top n items in order.
func (s *stack) dupN(n int) error {
	if err := s.need(n); err != nil {
		return err
	}
	for i := n; i > 0; i-- {
		v, _ := s.peek(n - 1)
		s.push(v)
	}
	return nil
}

// overN copies the n items below the top n items to the top.
func (s *stack) overN(n int) error {
	if err := s.need(2 * n); err != nil {
		return err
	}
	entry := 2*n - 1
	for i := n; i > 0; i-- {
		v, _ := s.peek(entry)
		s.push(v)
	}
	return nil
}

// rotN moves the third group of n items to the top.
func (s *stack) rotN(n int) error {
	if err := s.need(3 * n); err != nil {
		return err
	}
	entry := 3*n - 1
	for i := n; i > 0; i-- {
		v, _ := s.nip(entry)
		s.push(v)
	}
	return nil
}

// swapN swaps the top n items with the n items below them.
func (s *stack) swapN(n int) error {
	if err := s.need(2 * n); err != nil {
		return err
	}
	entry := 2*n - 1
	for i := n; i > 0; i-- {
		v, _ := s.nip(entry)
		s.push(v)
	}
	return nil
}

// pickN copies the item n positions below the top to the top.
func (s *stack) pickN(n int) error {
	v, err := s.peek(n)
	if err != nil {
		return err
	}
	s.push(v)
	return nil
}

// rollN moves the item n positions below the top to the top.
func (s *stack) rollN(n int) error {
	v, err := s.nip(n)
	if err != nil {
		return err
	}
	s.push(v)
	return nil
}

// tuck copies the top item below the second item.
func (s *stack) tuck() error {
	if err := s.need(2); err != nil {
		return err
	}
	top := s.items[len(s.items)-1]
	i := len(s.items) - 2
	s.items = append(s.items[:i], append([][]byte{top}, s.items[i:]...)...)
	return nil
}

// snapshot returns a bottom-up copy of the stack.
func (s *stack) snapshot() [][]byte {
	out := make([][]byte, len(s.items))
	for i, v := range s.items {
		out[i] = append([]byte(nil), v...)
	}
	return out
}

func (s *stack) String() string {
	var b strings.Builder
	for i := len(s.items) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%d: %s\n", len(s.items)-1-i, hex.EncodeToString(s.items[i]))
	}
	return b.String()
}
