package console

import (
	"errors"
	"fmt"
)

// Kind classifies a Status.
type Kind int

// Status kinds.
const (
	KindOK Kind = iota
	KindQuit
	KindReset
	KindParseError
	KindError
)

// Subsystem names the collaborator that reported a failure.
type Subsystem string

// Known subsystems.
const (
	SubsystemParam Subsystem = "param"
)

// Legacy status bytes, as rendered on the wire.
const (
	CodeOK         byte = 0x00
	CodeQuit       byte = 0x01
	CodeReset      byte = 0x02
	CodeParseError byte = 0x03
	CodeMaskError  byte = 0x80
)

// Status is the result of a command.
type Status struct {
	Kind      Kind
	Subsystem Subsystem
	Code      byte
}

// Predefined statuses.
var (
	StatusOK         = Status{Kind: KindOK}
	StatusQuit       = Status{Kind: KindQuit}
	StatusReset      = Status{Kind: KindReset}
	StatusParseError = Status{Kind: KindParseError}
)

// Failed creates an error status carrying a subsystem specific code.
func Failed(sub Subsystem, code byte) Status {
	return Status{Kind: KindError, Subsystem: sub, Code: code}
}

// StatusFromByte decodes a legacy status byte.
// The subsystem is not part of the byte and must be supplied.
func StatusFromByte(b byte, sub Subsystem) Status {
	if b&CodeMaskError != 0 {
		return Failed(sub, b&^CodeMaskError)
	}
	switch b {
	case CodeOK:
		return StatusOK
	case CodeQuit:
		return StatusQuit
	case CodeReset:
		return StatusReset
	default:
		return StatusParseError
	}
}

// Byte encodes the status as a legacy status byte.
func (s Status) Byte() byte {
	switch s.Kind {
	case KindOK:
		return CodeOK
	case KindQuit:
		return CodeQuit
	case KindReset:
		return CodeReset
	case KindError:
		return CodeMaskError | s.Code
	default:
		return CodeParseError
	}
}

// IsOK indicates success.
func (s Status) IsOK() bool {
	return s.Kind == KindOK
}

// String renders the status for the console.
func (s Status) String() string {
	switch s.Kind {
	case KindOK:
		return "OK"
	case KindQuit:
		return "QUIT"
	case KindReset:
		return "RESET"
	case KindParseError:
		return "PARSE ERROR"
	default:
		return fmt.Sprintf("ERROR %s %02x", s.Subsystem, s.Code)
	}
}

// Err converts failures into errors, nil otherwise.
func (s Status) Err() error {
	switch s.Kind {
	case KindParseError:
		return ErrParse
	case KindError:
		return &SubsystemError{Subsystem: s.Subsystem, Code: s.Code}
	default:
		return nil
	}
}

// ErrParse indicates an unknown command or malformed arguments.
var ErrParse = errors.New("parse error")

// SubsystemError is a failure reported by a collaborator.
type SubsystemError struct {
	Subsystem Subsystem
	Code      byte
}

// Error implements error.
func (e *SubsystemError) Error() string {
	return fmt.Sprintf("%s error 0x%02x", e.Subsystem, e.Code)
}
