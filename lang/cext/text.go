package cext

import (
	"fmt"

	"github.com/mna/nymphaea/lang/types"
)

// The native text object is split in two separately addressable structs, the
// state and the data. Each is a view of the same managed string.
type textWrapper struct {
	nativeState
	str *types.StringObject
}

func (w *textWrapper) Delegate() types.Value { return w.str }

// Text returns the wrapped string.
func (w *textWrapper) Text() *types.StringObject { return w.str }

// TextData wraps the data member of the native text object, the encoded
// characters.
type TextData struct{ textWrapper }

// TextState wraps the state member of the native text object, its length and
// representation flags.
type TextState struct{ textWrapper }

var (
	_ Wrapper = (*TextData)(nil)
	_ Wrapper = (*TextState)(nil)
)

func NewTextData(s *types.StringObject) *TextData {
	w := &TextData{textWrapper{str: s}}
	logCreated(w)
	return w
}

func NewTextState(s *types.StringObject) *TextState {
	w := &TextState{textWrapper{str: s}}
	logCreated(w)
	return w
}

// WrapText returns both native views of s.
func WrapText(s *types.StringObject) (*TextData, *TextState) {
	return NewTextData(s), NewTextState(s)
}

func (w *TextData) String() string {
	return fmt.Sprintf("TextData(%s, isNative=%t)", w.str, w.IsNative())
}

func (w *TextState) String() string {
	return fmt.Sprintf("TextState(%s, isNative=%t)", w.str, w.IsNative())
}

// isASCII reports whether s only contains 7-bit characters.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
