package vm

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the VM's flat error taxonomy. The dispatcher halts
// as soon as one of these is raised, and Close() reports it to the
// configured error sink.
type ErrorKind byte

const (
	// ErrNoMem marks an allocation failure.
	ErrNoMem ErrorKind = iota
	// ErrStackLen marks a required stack depth not met.
	ErrStackLen
	// ErrNoReg marks a register index absent.
	ErrNoReg
	// ErrNoStack marks a peek index beyond the current stack depth.
	ErrNoStack
	// ErrNoFound marks an unknown built-in name.
	ErrNoFound
	// ErrTypes marks a tag mismatch or illegal tag for an operation.
	ErrTypes
	// ErrOutOfJump marks a jump offset that leaves the instruction list.
	ErrOutOfJump
	// ErrNoFile marks a missing file.
	ErrNoFile
	// ErrReadFailed marks a host file-read failure.
	ErrReadFailed
	// ErrStatFailed marks a host file-stat failure.
	ErrStatFailed
	// ErrUnknown is a generic, uncategorized failure.
	ErrUnknown
)

var errorKindNames = [...]string{
	ErrNoMem:      "NOMEM",
	ErrStackLen:   "STKLN",
	ErrNoReg:      "NOREG",
	ErrNoStack:    "NOSTK",
	ErrNoFound:    "NOFND",
	ErrTypes:      "TYPES",
	ErrOutOfJump:  "OUTJM",
	ErrNoFile:     "NOFIL",
	ErrReadFailed: "CREAD",
	ErrStatFailed: "CSTAT",
	ErrUnknown:    "IDK",
}

// String returns the short mnemonic used for this error kind.
func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "IDK"
}

// VMError is the error type every VM-raised failure takes. It carries a
// Kind from the taxonomy above plus a human-readable message; it never
// carries a source position, since the core never sees source text, only
// already-decoded bytecode.
type VMError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *VMError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// newVMError constructs a *VMError from a kind and a printf-style message.
func newVMError(kind ErrorKind, format string, args ...any) *VMError {
	return &VMError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsVMError reports whether err is (or wraps) a *VMError and returns it.
func AsVMError(err error) (*VMError, bool) {
	var ve *VMError
	ok := errors.As(err, &ve)
	return ve, ok
}
