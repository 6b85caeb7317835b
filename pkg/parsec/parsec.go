// Package parsec implements a small parser combinator core: an immutable
// source cursor, a parse result, and a handful of combinators (or, bind, and,
// map, maybe, zeroOrMore) built on top of anchored regular-expression
// matching. Grammars are built by composing 'Parser' values together at
// package-level 'var' declaration time, the same way a recursive-descent
// grammar is usually laid out, except every rule is a value instead of a
// function.
package parsec

import (
	"fmt"
	"regexp"
)

// ----------------------------------------------------------------------------
// Cursor & Result

// An immutable pairing of the full input text and a byte offset into it.
// Cursors are never mutated; every combinator that advances a cursor does so
// by returning a brand new value. All cursors produced during a single
// top-level parse share the same 'progress' pointer, used to remember the
// furthest offset any parser attempted to match against (see 'Parse').
type Cursor struct {
	Source   string
	Offset   int
	progress *int
}

// Builds a fresh Cursor positioned at the start of 'source', with its own
// furthest-progress tracker (see 'Parse' for how that tracker is consumed).
func NewCursor(source string) Cursor {
	return Cursor{Source: source, Offset: 0, progress: new(int)}
}

// Attempts to match 'pattern' anchored exactly at the cursor's offset. On
// success returns the matched text and a cursor advanced past it; on failure
// returns the zero value and 'false'. This never searches forward: 'Regexp'
// compiles every pattern wrapped in '^(?:...)', so it can only match starting
// at offset zero of the remaining input, and a match found anywhere else is
// rejected as well.
func (c Cursor) Match(pattern *regexp.Regexp) (string, Cursor, bool) {
	c.mark(c.Offset)

	remainder := c.Source[c.Offset:]
	loc := pattern.FindStringIndex(remainder)
	if loc == nil || loc[0] != 0 {
		return "", c, false
	}

	next := Cursor{Source: c.Source, Offset: c.Offset + loc[1], progress: c.progress}
	next.mark(next.Offset)
	return remainder[:loc[1]], next, true
}

// Records 'offset' as reached if it is further than anything seen so far.
func (c Cursor) mark(offset int) {
	if c.progress != nil && offset > *c.progress {
		*c.progress = offset
	}
}

// A produced value paired with the cursor advanced past whatever was consumed
// to produce it. A nil '*Result' (returned alongside a nil error) signals
// ordinary parse failure, the sentinel described in the combinator contract.
type Result struct {
	Value interface{}
	Next  Cursor
}

// ----------------------------------------------------------------------------
// Parser

// A parser is a function from a cursor to either a Result, ordinary failure
// (nil Result, nil error), or a hard failure (nil Result, non-nil error). Hard
// failures come from 'Error' parsers and are not caught by 'Or': they abort
// the whole parse immediately, unwinding past every enclosing alternative,
// which is exactly the behavior spec'd for a mid-grammar placeholder that was
// never patched.
type Parser func(Cursor) (*Result, error)

// Runs the receiver directly against 'c'. Mostly useful at the call sites
// that kick a whole grammar off; combinators below call each other's
// underlying function value instead of going through this.
func (p Parser) Run(c Cursor) (*Result, error) { return p(c) }

// Tries the receiver first; if it neither matches nor hard-fails, tries 'q'
// from the very same cursor. This is ordered choice: the first alternative
// that produces a result wins, and no lookahead beyond what each alternative
// itself consumes is performed.
func (p Parser) Or(q Parser) Parser {
	return func(c Cursor) (*Result, error) {
		res, err := p(c)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		return q(c)
	}
}

// Runs the receiver; on success, feeds its value to 'f' to produce the next
// parser, which then runs from the receiver's advanced cursor. Propagates
// ordinary failure and hard failure from either stage.
func (p Parser) Bind(f func(interface{}) Parser) Parser {
	return func(c Cursor) (*Result, error) {
		res, err := p(c)
		if err != nil || res == nil {
			return nil, err
		}
		return f(res.Value)(res.Next)
	}
}

// Sequences the receiver and 'q', discarding the receiver's value.
func (p Parser) And(q Parser) Parser {
	return p.Bind(func(interface{}) Parser { return q })
}

// Runs the receiver and transforms its value through 'f' on success.
func (p Parser) Map(f func(interface{}) interface{}) Parser {
	return p.Bind(func(v interface{}) Parser { return Constant(f(v)) })
}

// ----------------------------------------------------------------------------
// Constructors

// Matches 'pattern' anchored at the cursor, yielding the matched text.
func Regexp(pattern string) Parser {
	compiled := regexp.MustCompile(`^(?:` + pattern + `)`)

	return func(c Cursor) (*Result, error) {
		text, next, ok := c.Match(compiled)
		if !ok {
			return nil, nil
		}
		return &Result{Value: text, Next: next}, nil
	}
}

// Consumes nothing and always succeeds with 'v'.
func Constant(v interface{}) Parser {
	return func(c Cursor) (*Result, error) { return &Result{Value: v, Next: c}, nil }
}

// Fails the whole parse with 'msg' whenever invoked. Used as the body of a
// not-yet-patched forward reference: if a grammar never patches it, any
// attempt to actually exercise that rule aborts parsing loudly instead of
// silently backtracking past it.
func Error(msg string) Parser {
	return func(c Cursor) (*Result, error) {
		return nil, fmt.Errorf("%s (at index %d)", msg, c.Offset)
	}
}

// Always succeeds, yielding 'p's value or a sentinel "absent" ('nil') value.
func Maybe(p Parser) Parser { return p.Or(Constant(nil)) }

// Greedily applies 'p' until it fails, yielding the accumulated (possibly
// empty) slice of values. Always succeeds.
func ZeroOrMore(p Parser) Parser {
	return func(c Cursor) (*Result, error) {
		values := []interface{}{}
		cursor := c

		for {
			res, err := p(cursor)
			if err != nil {
				return nil, err
			}
			if res == nil {
				break
			}
			values = append(values, res.Value)
			cursor = res.Next
		}

		return &Result{Value: values, Next: cursor}, nil
	}
}

// ----------------------------------------------------------------------------
// Forward references

// A one-shot-patchable placeholder for a rule that is mutually recursive with
// others and therefore must be referenced before it can be fully built. Every
// use site should call 'Ref' to obtain a 'Parser' usable immediately; once the
// real rule has been assembled, a single call to 'Patch' wires it in. Patching
// twice is a grammar-construction bug, not a parse-time failure, so it panics.
type ForwardRef struct {
	target  Parser
	patched bool
}

// Returns a fresh, unpatched forward reference. Until 'Patch' is called, its
// 'Ref()' parser hard-fails with a "forward reference never patched" error.
func NewForwardRef(name string) *ForwardRef {
	return &ForwardRef{target: Error(fmt.Sprintf("forward reference %q never patched", name))}
}

// Returns a parser that indirects through the receiver's current target. Safe
// to embed into other parsers before 'Patch' is called, since the indirection
// is resolved lazily at parse time, not at grammar-construction time.
func (r *ForwardRef) Ref() Parser {
	return func(c Cursor) (*Result, error) { return r.target(c) }
}

// Wires 'p' in as the receiver's real implementation. May only be called once
// per forward reference; grammar construction is meant to be fully
// deterministic and the grammar immutable once built.
func (r *ForwardRef) Patch(p Parser) {
	if r.patched {
		panic("parsec: forward reference patched more than once")
	}
	r.target = p
	r.patched = true
}

// ----------------------------------------------------------------------------
// Top-level entry point

// Runs 'grammar' against the whole of 'source' and requires it to consume the
// entire input. On success returns the produced value; on failure (either the
// grammar never matched, it stopped short of the end, or a hard 'Error'
// parser fired) returns an error. Ordinary failures are reported with the
// furthest offset any parser reached while attempting a match, mirroring the
// "Parse error at index N" contract.
func Parse(grammar Parser, source string) (interface{}, error) {
	cursor := NewCursor(source)

	res, err := grammar(cursor)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("Parse error at index %d", *cursor.progress)
	}
	if res.Next.Offset != len(source) {
		return nil, fmt.Errorf("Parse error at index %d", *res.Next.progress)
	}

	return res.Value, nil
}
