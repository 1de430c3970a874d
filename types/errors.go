package types

import (
	"fmt"
	"strings"
)

// InputError reports a malformed or missing input: files, records, tokens
type InputError struct {
	File  string
	Line  int // 1-based, 0 when not tied to a line
	Block int // 1-based, 0 when not tied to a block
	Msg   string
	Err   error
}

func (e *InputError) Error() string {
	var sb strings.Builder
	sb.WriteString("input error")
	if e.File != "" {
		fmt.Fprintf(&sb, " in %s", e.File)
		if e.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Line)
		}
	}
	if e.Block > 0 {
		fmt.Fprintf(&sb, ", block %d", e.Block)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *InputError) Unwrap() error { return e.Err }

// GeometryError reports an index extent that can not be coarsened to the requested level
type GeometryError struct {
	Block int
	Level int
	Axis  Axis
	Count int
	Msg   string
}

func (e *GeometryError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("cell count %d is not divisible by 2", e.Count)
	}
	return fmt.Sprintf("geometry error, block %d, level %d, axis %s: %s",
		e.Block, e.Level, e.Axis, msg)
}

// CrossRefError reports inconsistent references between inputs
type CrossRefError struct {
	Block int
	Level int
	Msg   string
	Err   error
}

func (e *CrossRefError) Error() string {
	var sb strings.Builder
	sb.WriteString("cross reference error")
	if e.Block > 0 {
		fmt.Fprintf(&sb, ", block %d", e.Block)
	}
	if e.Level > 0 {
		fmt.Fprintf(&sb, ", level %d", e.Level)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *CrossRefError) Unwrap() error { return e.Err }
