package textsearch

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrPatternSyntax  = errors.New("invalid pattern syntax")
	ErrSelectorSyntax = errors.New("invalid selector syntax")
	ErrInvalidScope   = errors.New("invalid search scope")
)

// PatternSyntaxError reports a pattern source that failed to compile.
type PatternSyntaxError struct {
	Source string
	Err    error
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Source, e.Err)
}

func (e *PatternSyntaxError) Unwrap() error { return e.Err }

func (e *PatternSyntaxError) Is(target error) bool { return target == ErrPatternSyntax }

// SelectorSyntaxError reports an exclusion or scope selector that failed to parse.
type SelectorSyntaxError struct {
	Selector string
	Err      error
}

func (e *SelectorSyntaxError) Error() string {
	return fmt.Sprintf("selector %q: %v", e.Selector, e.Err)
}

func (e *SelectorSyntaxError) Unwrap() error { return e.Err }

func (e *SelectorSyntaxError) Is(target error) bool { return target == ErrSelectorSyntax }

// InvalidScopeError reports a scope node that cannot be traversed.
type InvalidScopeError struct {
	Reason string
}

func (e *InvalidScopeError) Error() string {
	return "invalid scope: " + e.Reason
}

func (e *InvalidScopeError) Is(target error) bool { return target == ErrInvalidScope }
