package textsearch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// Matcher reports whether a text value satisfies a pattern.
type Matcher interface {
	Test(text string) bool
}

// MatcherFunc adapts an ordinary function to the Matcher interface.
type MatcherFunc func(text string) bool

// Test calls f(text).
func (f MatcherFunc) Test(text string) bool { return f(text) }

// matchAny accepts every non-empty text value.
var matchAny = MatcherFunc(func(text string) bool { return text != "" })

type patternKind int

const (
	kindAny patternKind = iota
	kindString
	kindCompiled
)

// Pattern is either a pattern source compiled at search time or a matcher
// supplied by the caller. The zero Pattern matches any non-empty text.
type Pattern struct {
	kind    patternKind
	source  string
	matcher Matcher
}

// String returns a Pattern that compiles source with ECMAScript syntax.
// Multi-line mode is always on; case folding follows Query.CaseSensitive.
func String(source string) Pattern {
	return Pattern{kind: kindString, source: source}
}

// Compiled returns a Pattern that uses m unchanged. Query.CaseSensitive has no
// effect on it. A nil matcher yields the match-anything pattern.
func Compiled(m Matcher) Pattern {
	if m == nil {
		return Pattern{}
	}
	return Pattern{kind: kindCompiled, matcher: m}
}

// Regexp wraps a standard library regular expression.
func Regexp(re *regexp.Regexp) Pattern {
	if re == nil {
		return Pattern{}
	}
	return Pattern{kind: kindCompiled, source: re.String(), matcher: MatcherFunc(re.MatchString)}
}

// Regexp2 wraps a regexp2 expression. Match timeouts count as no match.
func Regexp2(re *regexp2.Regexp) Pattern {
	if re == nil {
		return Pattern{}
	}
	return Pattern{kind: kindCompiled, source: re.String(), matcher: regexp2Matcher{re: re}}
}

// Literal parses a regular expression literal such as /foo\d+/i into a
// Compiled pattern. Supported flags are i, m, s and u; g and y are accepted
// and ignored since a single test carries no match position. With s, "."
// also matches line terminators.
func Literal(lit string) (Pattern, error) {
	end := strings.LastIndex(lit, "/")
	if !strings.HasPrefix(lit, "/") || end < 1 {
		return Pattern{}, &PatternSyntaxError{Source: lit, Err: fmt.Errorf("not a /source/flags literal")}
	}

	source, flags := lit[1:end], lit[end+1:]
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	dotAll := false
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			// regexp2 ignores Singleline in ECMAScript mode.
			dotAll = true
		case 'u':
			opts |= regexp2.Unicode
		case 'g', 'y':
		default:
			return Pattern{}, &PatternSyntaxError{Source: lit, Err: fmt.Errorf("unknown flag %q", f)}
		}
	}

	if dotAll {
		source = expandDotAll(source)
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return Pattern{}, &PatternSyntaxError{Source: lit, Err: err}
	}
	return Regexp2(re), nil
}

// expandDotAll rewrites every unescaped "." outside a character class to
// [\s\S].
func expandDotAll(src string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			b.WriteByte(c)
			i++
			b.WriteByte(src[i])
			continue
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '.':
			b.WriteString(`[\s\S]`)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// IsZero reports whether p is the match-anything pattern.
func (p Pattern) IsZero() bool { return p.kind == kindAny }

// Source returns the pattern source, or "" for matchers without one.
func (p Pattern) Source() string { return p.source }

func (p Pattern) String() string {
	switch p.kind {
	case kindString:
		return fmt.Sprintf("%q", p.source)
	case kindCompiled:
		if p.source != "" {
			return "/" + p.source + "/"
		}
		return "<matcher>"
	default:
		return "<any>"
	}
}

// resolve turns p into the matcher used for one search.
func (p Pattern) resolve(caseSensitive bool) (Matcher, error) {
	switch p.kind {
	case kindString:
		opts := regexp2.RegexOptions(regexp2.ECMAScript | regexp2.Multiline)
		if !caseSensitive {
			opts |= regexp2.IgnoreCase
		}
		re, err := regexp2.Compile(p.source, opts)
		if err != nil {
			return nil, &PatternSyntaxError{Source: p.source, Err: err}
		}
		return regexp2Matcher{re: re}, nil
	case kindCompiled:
		return p.matcher, nil
	default:
		return matchAny, nil
	}
}

type regexp2Matcher struct {
	re *regexp2.Regexp
}

func (m regexp2Matcher) Test(text string) bool {
	ok, err := m.re.MatchString(text)
	return err == nil && ok
}
