package txscript

import "bytes"

// stack is the data stack (or alt stack) the engine evaluates against. It
// mirrors the classic btcsuite stack: a slice of byte-string elements with
// bitcoin's boolean encoding (a byte string with any non-zero byte is true
// unless it is a negative-zero encoding; an empty string is false).
type stack struct {
	stk []parsedData
}

type parsedData = []byte

func (s *stack) depth() int {
	return len(s.stk)
}

func (s *stack) PushByteArray(so []byte) {
	s.stk = append(s.stk, so)
}

func (s *stack) PushBool(val bool) {
	if val {
		s.PushByteArray([]byte{1})
	} else {
		s.PushByteArray(nil)
	}
}

func (s *stack) PopByteArray() ([]byte, error) {
	if len(s.stk) == 0 {
		return nil, scriptError(ErrStackUnderflow, "pop from empty stack")
	}
	last := s.stk[len(s.stk)-1]
	s.stk = s.stk[:len(s.stk)-1]
	return last, nil
}

func (s *stack) PopBool() (bool, error) {
	b, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(b), nil
}

func (s *stack) PeekByteArray(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(s.stk) {
		return nil, scriptError(ErrStackUnderflow, "peek index out of range")
	}
	return s.stk[len(s.stk)-idx-1], nil
}

func (s *stack) DupN(n int) error {
	if n < 1 {
		return nil
	}
	if n > len(s.stk) {
		return scriptError(ErrStackUnderflow, "dup count exceeds stack depth")
	}
	start := len(s.stk) - n
	for i := start; i < start+n; i++ {
		cp := make([]byte, len(s.stk[i]))
		copy(cp, s.stk[i])
		s.stk = append(s.stk, cp)
	}
	return nil
}

func asBool(b []byte) bool {
	for i, v := range b {
		if v != 0 {
			// Negative zero (the sign bit set on the final byte with
			// every other byte zero) is still considered false.
			if i == len(b)-1 && v == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func asInt(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	v := 0
	for i, by := range b {
		if i == len(b)-1 {
			v |= int(by&0x7f) << (8 * i)
			if by&0x80 != 0 {
				return -v
			}
			continue
		}
		v |= int(by) << (8 * i)
	}
	return v
}

// bytesEqual is a small readability wrapper over bytes.Equal used by the
// OP_EQUAL family.
func bytesEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}
