package render

import "fmt"

// RenderError wraps a failure inside a format renderer.
type RenderError struct {
	Format Format
	Stage  string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s failed at %s: %v", e.Format, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned for an unknown output format token.
type UnsupportedFormatError struct {
	Token string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format %q", e.Token)
}
