// Package reader implements the lexer/parser that turns source text into
// a sequence of top-level S-expressions with positions (spec §4.1).
package reader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// Read parses src (the full contents of one source file) into an ordered
// sequence of top-level forms. filePath labels every position recorded in
// the result (spec §3 invariant: every node has a non-empty filePath).
func Read(src []byte, filePath string) ([]ast.Node, error) {
	r := &reader{src: string(src), file: filePath, line: 1, col: 1}
	var forms []ast.Node
	for {
		if err := r.skipAtmosphere(); err != nil {
			return nil, err
		}
		if r.atEOF() {
			break
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

type reader struct {
	src  string
	pos  int // byte offset
	line int
	col  int // 1-indexed rune column
	file string
}

func (r *reader) atEOF() bool { return r.pos >= len(r.src) }

func (r *reader) here() ast.Position {
	return ast.Position{FilePath: r.file, Line: r.line, Column: r.col}
}

// peek returns the rune at the current position without consuming it.
func (r *reader) peek() (rune, int) {
	if r.atEOF() {
		return 0, 0
	}
	ru, size := utf8.DecodeRuneInString(r.src[r.pos:])
	return ru, size
}

func (r *reader) peekAt(offset int) (rune, int) {
	pos := r.pos
	for i := 0; i < offset; i++ {
		_, size := utf8.DecodeRuneInString(r.src[pos:])
		if size == 0 {
			return 0, 0
		}
		pos += size
	}
	if pos >= len(r.src) {
		return 0, 0
	}
	ru, size := utf8.DecodeRuneInString(r.src[pos:])
	return ru, size
}

func (r *reader) advance() rune {
	ru, size := r.peek()
	r.pos += size
	if ru == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return ru
}

// skipAtmosphere consumes whitespace, ';' line comments, and nestable
// '#|' ... '|#' block comments.
func (r *reader) skipAtmosphere() error {
	for !r.atEOF() {
		ru, _ := r.peek()
		switch {
		case unicode.IsSpace(ru):
			r.advance()
		case ru == ';':
			for !r.atEOF() {
				ru, _ = r.peek()
				if ru == '\n' {
					break
				}
				r.advance()
			}
		case ru == '#' && peekIs(r, 1, '|'):
			if err := r.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func peekIs(r *reader, offset int, want rune) bool {
	ru, size := r.peekAt(offset)
	return size > 0 && ru == want
}

// skipBlockComment consumes one '#|' comment, already confirmed present
// at the current position, through its matching '|#', honoring nested
// '#|' ... '|#' pairs.
func (r *reader) skipBlockComment() error {
	start := r.here()
	r.advance() // '#'
	r.advance() // '|'
	depth := 1
	for depth > 0 {
		if r.atEOF() {
			return hqlerrors.New(hqlerrors.CodeUnclosedComment, "unclosed block comment", start)
		}
		ru, _ := r.peek()
		switch {
		case ru == '#' && peekIs(r, 1, '|'):
			r.advance()
			r.advance()
			depth++
		case ru == '|' && peekIs(r, 1, '#'):
			r.advance()
			r.advance()
			depth--
		default:
			r.advance()
		}
	}
	return nil
}

func (r *reader) errorf(code hqlerrors.Code, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return hqlerrors.New(code, msg, r.here())
}

// readForm dispatches on the next character to read one S-expression.
func (r *reader) readForm() (ast.Node, error) {
	if err := r.skipAtmosphere(); err != nil {
		return nil, err
	}
	if r.atEOF() {
		return nil, r.errorf(hqlerrors.CodeUnexpectedEOF, "unexpected end of input")
	}

	start := r.here()
	ru, _ := r.peek()

	switch {
	case ru == '(':
		return r.readList(start, '(', ')')
	case ru == '[':
		return r.readSugarList(start, '[', ']', "vector")
	case ru == '{':
		return r.readSugarList(start, '{', '}', "hash-map")
	case ru == ')' || ru == ']' || ru == '}':
		r.advance()
		return nil, r.errorf(hqlerrors.CodeUnexpectedToken, "unexpected %q", ru)
	case ru == '\'':
		r.advance()
		return r.readWrapped(start, "quote")
	case ru == '`':
		r.advance()
		return r.readWrapped(start, "quasiquote")
	case ru == '~':
		r.advance()
		if next, _ := r.peek(); next == '@' {
			r.advance()
			return r.readWrapped(start, "unquote-splicing")
		}
		return r.readWrapped(start, "unquote")
	case ru == '"':
		return r.readString(start)
	case isDigitStart(ru, r):
		return r.readNumber(start)
	default:
		return r.readSymbol(start)
	}
}

func isDigitStart(ru rune, r *reader) bool {
	if unicode.IsDigit(ru) {
		return true
	}
	if ru == '-' || ru == '+' {
		next, _ := r.peekAt(1)
		return unicode.IsDigit(next)
	}
	return false
}

func (r *reader) readWrapped(start ast.Position, head string) (ast.Node, error) {
	if err := r.skipAtmosphere(); err != nil {
		return nil, err
	}
	inner, err := r.readForm()
	if err != nil {
		return nil, err
	}
	return &ast.List{
		Elements: []ast.Node{ast.Sym(head, start), inner},
		Meta:     start,
	}, nil
}

func (r *reader) readList(start ast.Position, open, close rune) (ast.Node, error) {
	r.advance() // consume open
	var elements []ast.Node
	for {
		if err := r.skipAtmosphere(); err != nil {
			return nil, err
		}
		if r.atEOF() {
			return nil, r.errorf(hqlerrors.CodeUnclosedList, "unclosed list: missing %q", close)
		}
		ru, _ := r.peek()
		if ru == close {
			r.advance()
			break
		}
		if ru == ')' || ru == ']' || ru == '}' {
			return nil, r.errorf(hqlerrors.CodeUnexpectedToken, "unexpected %q, expected %q", ru, close)
		}
		elem, err := r.readForm()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}
	return &ast.List{Elements: elements, Meta: start}, nil
}

// readSugarList reads `[...]` or `{...}` and synthesizes the reserved head
// symbol ("vector" or "hash-map") spec §3/§4.1 requires. Both
// unquoted-key-no-comma (`{:k v}`) and JSON (`{"k": v, ...}`) map styles
// are accepted by simply treating ':' and ',' as ordinary atmosphere for
// map bodies; the IR builder later interprets key/value pairs positionally
// (spec §4.2: "kept as-is; processed by IR builder").
func (r *reader) readSugarList(start ast.Position, open, close rune, head string) (ast.Node, error) {
	r.advance() // consume open
	elements := []ast.Node{ast.Sym(head, start)}
	for {
		if err := r.skipMapAtmosphere(close); err != nil {
			return nil, err
		}
		if r.atEOF() {
			return nil, r.errorf(hqlerrors.CodeUnclosedList, "unclosed %q: missing %q", open, close)
		}
		ru, _ := r.peek()
		if ru == close {
			r.advance()
			break
		}
		elem, err := r.readForm()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
		if err := r.skipMapAtmosphere(close); err != nil {
			return nil, err
		}
		if ru, _ := r.peek(); ru == ':' && close == '}' {
			// `{"k": v}` JSON style: the colon separates key and value but
			// carries no semantic weight once both sides are read as forms.
			r.advance()
		}
	}
	return &ast.List{Elements: elements, Meta: start}, nil
}

// skipMapAtmosphere additionally treats ',' as whitespace, since JSON-style
// map literals use commas as separators the hash-map form ignores.
func (r *reader) skipMapAtmosphere(close rune) error {
	for !r.atEOF() {
		ru, _ := r.peek()
		switch {
		case ru == ',':
			r.advance()
		case unicode.IsSpace(ru):
			r.advance()
		case ru == ';':
			for !r.atEOF() {
				ru, _ = r.peek()
				if ru == '\n' {
					break
				}
				r.advance()
			}
		case ru == '#' && peekIs(r, 1, '|'):
			if err := r.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (r *reader) readString(start ast.Position) (ast.Node, error) {
	r.advance() // consume opening quote
	var b strings.Builder
	for {
		if r.atEOF() {
			return nil, r.errorf(hqlerrors.CodeUnclosedString, "unclosed string literal")
		}
		ru, _ := r.peek()
		if ru == '"' {
			r.advance()
			break
		}
		if ru == '\\' {
			r.advance()
			esc, _ := r.peek()
			if r.atEOF() {
				return nil, r.errorf(hqlerrors.CodeUnclosedString, "unclosed string literal")
			}
			switch esc {
			case '\\':
				b.WriteByte('\\')
				r.advance()
			case '"':
				b.WriteByte('"')
				r.advance()
			case 'n':
				b.WriteByte('\n')
				r.advance()
			case 'r':
				b.WriteByte('\r')
				r.advance()
			case 't':
				b.WriteByte('\t')
				r.advance()
			case 'u':
				r.advance()
				code, err := r.readUnicodeEscape()
				if err != nil {
					return nil, err
				}
				b.WriteRune(code)
			default:
				return nil, r.errorf(hqlerrors.CodeInvalidChar, "invalid escape sequence \\%c", esc)
			}
			continue
		}
		b.WriteRune(r.advance())
	}
	return ast.Str(b.String(), start), nil
}

// readUnicodeEscape reads the `{NNNN}` part of a \u{NNNN} escape.
func (r *reader) readUnicodeEscape() (rune, error) {
	ru, _ := r.peek()
	if ru != '{' {
		return 0, r.errorf(hqlerrors.CodeInvalidChar, "expected '{' after \\u")
	}
	r.advance()
	var hex strings.Builder
	for {
		ru, _ := r.peek()
		if ru == '}' {
			r.advance()
			break
		}
		if r.atEOF() {
			return 0, r.errorf(hqlerrors.CodeUnclosedString, "unclosed \\u{...} escape")
		}
		hex.WriteRune(r.advance())
	}
	code, err := strconv.ParseInt(hex.String(), 16, 32)
	if err != nil {
		return 0, r.errorf(hqlerrors.CodeInvalidChar, "invalid unicode escape \\u{%s}", hex.String())
	}
	return rune(code), nil
}

// delimiters that end a bare token (symbol or number).
func isDelimiter(ru rune) bool {
	switch ru {
	case '(', ')', '[', ']', '{', '}', '"', ';', '\'', '`', '~', ',':
		return true
	}
	return unicode.IsSpace(ru) || ru == 0
}

func (r *reader) readNumber(start ast.Position) (ast.Node, error) {
	var b strings.Builder
	isFloat := false
	for {
		ru, _ := r.peek()
		if isDelimiter(ru) {
			break
		}
		if ru == '.' || ru == 'e' || ru == 'E' {
			isFloat = true
		}
		b.WriteRune(r.advance())
	}
	text := b.String()
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, r.errorf(hqlerrors.CodeInvalidChar, "invalid number literal %q", text)
		}
		return &ast.Literal{Kind: ast.LitFloat, Value: f, Meta: start}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// Fall back to float for values that overflow int64 or carry a
		// sign/exponent form readNumber's loop let through.
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return nil, r.errorf(hqlerrors.CodeInvalidChar, "invalid number literal %q", text)
		}
		return &ast.Literal{Kind: ast.LitFloat, Value: f, Meta: start}, nil
	}
	return &ast.Literal{Kind: ast.LitInt, Value: i, Meta: start}, nil
}

func (r *reader) readSymbol(start ast.Position) (ast.Node, error) {
	var b strings.Builder
	for {
		ru, _ := r.peek()
		if isDelimiter(ru) {
			break
		}
		b.WriteRune(r.advance())
	}
	name := b.String()
	if name == "" {
		ru, _ := r.peek()
		return nil, r.errorf(hqlerrors.CodeInvalidChar, "invalid character %q", ru)
	}
	switch name {
	case "null":
		return &ast.Literal{Kind: ast.LitNull, Value: nil, Meta: start}, nil
	case "true":
		return &ast.Literal{Kind: ast.LitBool, Value: true, Meta: start}, nil
	case "false":
		return &ast.Literal{Kind: ast.LitBool, Value: false, Meta: start}, nil
	}
	return ast.Sym(name, start), nil
}
