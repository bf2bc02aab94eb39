package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/pcregex/internal/charset"
)

const (
	// MaxRepeat is the largest count accepted in a {n,m} quantifier.
	MaxRepeat = 1000

	// maxDepth bounds group nesting so parsing never exhausts the goroutine
	// stack.
	maxDepth = 1000

	maxNameLen = 32
)

type parser struct {
	expr  string
	pos   int
	depth int
	ncap  int
	names map[string]int

	inQuote bool
}

// Parse parses expr into an expression tree.
func Parse(expr string) (*Regexp, error) {
	if !utf8.ValidString(expr) {
		off := 0
		for off < len(expr) {
			r, size := utf8.DecodeRuneInString(expr[off:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			off += size
		}
		return nil, NewError(InvalidUTF8, expr, off, "")
	}

	p := &parser{expr: expr, names: make(map[string]int)}
	re, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.expr) {
		// parseAlternation only stops early on ')'.
		return nil, p.errorf(UnbalancedParenthesis, p.pos, "unmatched ')'")
	}
	return re, nil
}

func (p *parser) errorf(kind ErrorKind, offset int, detail string) *Error {
	return NewError(kind, p.expr, offset, detail)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.expr)
}

func (p *parser) peek() rune {
	if p.eof() {
		return -1
	}
	if c := p.expr[p.pos]; c < utf8.RuneSelf {
		return rune(c)
	}
	r, _ := utf8.DecodeRuneInString(p.expr[p.pos:])
	return r
}

func (p *parser) next() rune {
	if p.eof() {
		return -1
	}
	r, size := utf8.DecodeRuneInString(p.expr[p.pos:])
	p.pos += size
	return r
}

func (p *parser) eat(prefix string) bool {
	if strings.HasPrefix(p.expr[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *parser) parseAlternation() (*Regexp, error) {
	start := p.pos
	var alts []*Regexp
	for {
		re, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		alts = append(alts, re)
		if !p.eat("|") {
			break
		}
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &Regexp{Op: OpAlternate, Sub: alts, Pos: start}, nil
}

func (p *parser) parseConcat() (*Regexp, error) {
	start := p.pos
	var items []*Regexp
	for !p.eof() {
		if c := p.peek(); !p.inQuote && (c == '|' || c == ')') {
			break
		}
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		if atom == nil {
			// comment or quoting delimiter
			continue
		}
		atom, err = p.parseQuantifier(atom)
		if err != nil {
			return nil, err
		}
		items = append(items, atom)
	}
	switch len(items) {
	case 0:
		return &Regexp{Op: OpEmpty, Pos: start}, nil
	case 1:
		return items[0], nil
	}
	return &Regexp{Op: OpConcat, Sub: items, Pos: start}, nil
}

// parseQuantifier wraps atom in a repetition if one follows it.
func (p *parser) parseQuantifier(atom *Regexp) (*Regexp, error) {
	if p.inQuote {
		return atom, nil
	}
	start := p.pos
	var lo, hi int
	switch p.peek() {
	case '*':
		p.pos++
		lo, hi = 0, -1
	case '+':
		p.pos++
		lo, hi = 1, -1
	case '?':
		p.pos++
		lo, hi = 0, 1
	case '{':
		var ok bool
		var err error
		lo, hi, ok, err = p.parseBraces()
		if err != nil {
			return nil, err
		}
		if !ok {
			return atom, nil
		}
	default:
		return atom, nil
	}

	re := &Regexp{Op: OpRepeat, Sub: []*Regexp{atom}, Min: lo, Max: hi, Pos: atom.Pos}
	switch p.peek() {
	case '?':
		p.pos++
		re.Lazy = true
	case '+':
		p.pos++
		re.Possessive = true
	}

	if p.startsQuantifier() {
		return nil, p.errorf(InvalidQuantifier, p.pos, "quantifier follows quantifier at "+strconv.Itoa(start))
	}
	return re, nil
}

// startsQuantifier reports whether the input at pos begins a quantifier.
func (p *parser) startsQuantifier() bool {
	switch p.peek() {
	case '*', '+', '?':
		return true
	case '{':
		save := p.pos
		_, _, ok, err := p.parseBraces()
		p.pos = save
		return ok || err != nil
	}
	return false
}

// parseBraces parses {n}, {n,} or {n,m} at pos. When the text is not a
// quantifier, ok is false and pos is unchanged so that '{' reads as a
// literal.
func (p *parser) parseBraces() (lo, hi int, ok bool, err error) {
	start := p.pos
	i := start + 1
	readNum := func() (int, bool) {
		j := i
		n := 0
		for j < len(p.expr) && p.expr[j] >= '0' && p.expr[j] <= '9' {
			if n <= MaxRepeat {
				n = n*10 + int(p.expr[j]-'0')
			}
			j++
		}
		if j == i {
			return 0, false
		}
		i = j
		return n, true
	}

	lo, ok = readNum()
	if !ok {
		return 0, 0, false, nil
	}
	hi = lo
	if i < len(p.expr) && p.expr[i] == ',' {
		i++
		if hi, ok = readNum(); !ok {
			hi = -1
		}
	}
	if i >= len(p.expr) || p.expr[i] != '}' {
		return 0, 0, false, nil
	}
	switch {
	case lo > MaxRepeat || hi > MaxRepeat:
		return 0, 0, false, p.errorf(InvalidQuantifier, start, "repetition count exceeds "+strconv.Itoa(MaxRepeat))
	case hi >= 0 && hi < lo:
		return 0, 0, false, p.errorf(InvalidQuantifier, start, "min greater than max")
	}
	p.pos = i + 1
	return lo, hi, true, nil
}

func (p *parser) parseAtom() (*Regexp, error) {
	start := p.pos
	if p.inQuote {
		return p.quotedAtom(), nil
	}
	switch c := p.peek(); c {
	case '*', '+', '?':
		return nil, p.errorf(InvalidQuantifier, start, "nothing to repeat")
	case '{':
		if p.startsQuantifier() {
			return nil, p.errorf(InvalidQuantifier, start, "nothing to repeat")
		}
		p.pos++
		return &Regexp{Op: OpLiteral, Rune: '{', Pos: start}, nil
	case '.':
		p.pos++
		return &Regexp{Op: OpDot, Pos: start}, nil
	case '^':
		p.pos++
		return &Regexp{Op: OpBeginLine, Pos: start}, nil
	case '$':
		p.pos++
		return &Regexp{Op: OpEndLine, Pos: start}, nil
	case '[':
		return p.parseClass()
	case '(':
		return p.parseGroup()
	case '\\':
		return p.parseEscape()
	default:
		p.next()
		return &Regexp{Op: OpLiteral, Rune: c, Pos: start}, nil
	}
}

func (p *parser) parseGroup() (*Regexp, error) {
	start := p.pos
	p.pos++ // '('

	if p.eat("?") {
		switch {
		case p.eat("#"):
			end := strings.IndexByte(p.expr[p.pos:], ')')
			if end < 0 {
				return nil, p.errorf(UnbalancedParenthesis, start, "unterminated comment")
			}
			p.pos += end + 1
			return nil, nil
		case p.eat(":"):
			return p.parseGroupBody(start, func(sub *Regexp) *Regexp { return sub })
		case p.eat(">"):
			return p.parseGroupBody(start, wrap(OpAtomic, start))
		case p.eat("="):
			return p.parseGroupBody(start, wrap(OpLookahead, start))
		case p.eat("!"):
			return p.parseGroupBody(start, wrap(OpNegLookahead, start))
		case p.eat("<="), p.eat("<!"):
			return nil, p.errorf(UnsupportedFeature, start, "lookbehind")
		case p.eat("P<"), p.eat("<"):
			return p.parseNamedGroup(start, '>')
		case p.eat("'"):
			return p.parseNamedGroup(start, '\'')
		case p.eat("P="):
			return nil, p.errorf(UnsupportedFeature, start, "backreference")
		case p.eat("P>"), p.eat("&"):
			return nil, p.errorf(UnsupportedFeature, start, "subroutine call")
		case p.eat("R)"), p.eat("0)"):
			return &Regexp{Op: OpRecursion, Pos: start}, nil
		}
		if c := p.peek(); (c >= '1' && c <= '9') || c == '+' || c == '-' && p.pos+1 < len(p.expr) && isDigit(p.expr[p.pos+1]) {
			return nil, p.errorf(UnsupportedFeature, start, "subroutine call")
		}
		if c := p.peek(); c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '^' {
			return nil, p.errorf(UnsupportedFeature, start, "inline flags")
		}
		return nil, p.errorf(UnsupportedFeature, start, "unknown group type")
	}

	p.ncap++
	idx := p.ncap
	return p.parseGroupBody(start, func(sub *Regexp) *Regexp {
		return &Regexp{Op: OpCapture, Sub: []*Regexp{sub}, Cap: idx, Pos: start}
	})
}

func wrap(op Op, pos int) func(*Regexp) *Regexp {
	return func(sub *Regexp) *Regexp {
		return &Regexp{Op: op, Sub: []*Regexp{sub}, Pos: pos}
	}
}

func (p *parser) parseGroupBody(start int, build func(*Regexp) *Regexp) (*Regexp, error) {
	p.depth++
	if p.depth > maxDepth {
		return nil, p.errorf(NestingTooDeep, start, "")
	}
	sub, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if !p.eat(")") {
		return nil, p.errorf(UnbalancedParenthesis, start, "missing ')'")
	}
	p.depth--
	return build(sub), nil
}

func (p *parser) parseNamedGroup(start int, term byte) (*Regexp, error) {
	nameStart := p.pos
	end := strings.IndexByte(p.expr[p.pos:], term)
	if end < 0 {
		return nil, p.errorf(InvalidGroupName, nameStart, "unterminated name")
	}
	name := p.expr[p.pos : p.pos+end]
	if !isValidName(name) {
		return nil, p.errorf(InvalidGroupName, nameStart, "bad name "+strconv.Quote(name))
	}
	if _, dup := p.names[name]; dup {
		return nil, p.errorf(InvalidGroupName, nameStart, "duplicate name "+strconv.Quote(name))
	}
	p.pos += end + 1

	p.ncap++
	idx := p.ncap
	p.names[name] = idx
	return p.parseGroupBody(start, func(sub *Regexp) *Regexp {
		return &Regexp{Op: OpCapture, Sub: []*Regexp{sub}, Cap: idx, Name: name, Pos: start}
	})
}

func isValidName(name string) bool {
	if name == "" || len(name) > maxNameLen || isDigit(name[0]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// parseEscape parses a backslash sequence outside a character class.
func (p *parser) parseEscape() (*Regexp, error) {
	start := p.pos
	p.pos++ // '\\'
	if p.eof() {
		return nil, p.errorf(InvalidEscape, start, "trailing backslash")
	}

	c := p.peek()
	anchor := func(op Op) (*Regexp, error) {
		p.pos++
		return &Regexp{Op: op, Pos: start}, nil
	}
	switch c {
	case 'b':
		return anchor(OpWordBoundary)
	case 'B':
		return anchor(OpNoWordBoundary)
	case 'A':
		return anchor(OpBeginText)
	case 'z':
		return anchor(OpEndText)
	case 'Z', 'G':
		return nil, p.errorf(UnsupportedFeature, start, `\`+string(c))
	case '1', '2', '3', '4', '5', '6', '7', '8', '9', 'k', 'g':
		return nil, p.errorf(UnsupportedFeature, start, "backreference")
	case 'Q':
		p.pos++
		p.inQuote = true
		return nil, nil
	}

	if cls, ok := shorthand(c); ok {
		p.pos++
		return &Regexp{Op: OpClass, Class: cls, Negate: c >= 'A' && c <= 'Z', Pos: start}, nil
	}

	r, err := p.parseEscapedRune(start, false)
	if err != nil {
		return nil, err
	}
	return &Regexp{Op: OpLiteral, Rune: r, Pos: start}, nil
}

// quotedAtom reads one literal inside \Q...\E. The closing \E is consumed
// together with the last character so that a following quantifier binds to
// it.
func (p *parser) quotedAtom() *Regexp {
	start := p.pos
	if p.eat(`\E`) {
		p.inQuote = false
		return nil
	}
	r := p.next()
	if p.eat(`\E`) {
		p.inQuote = false
	}
	return &Regexp{Op: OpLiteral, Rune: r, Pos: start}
}

// shorthand returns the class for \d \w \s and their negations. Negated forms
// return the positive class; the caller inverts.
func shorthand(c rune) (charset.Ranges, bool) {
	switch c {
	case 'd', 'D':
		return charset.Digit, true
	case 'w', 'W':
		return charset.Word, true
	case 's', 'S':
		return charset.Space, true
	}
	return nil, false
}

// parseEscapedRune decodes a single-character escape at pos (just past the
// backslash).
func (p *parser) parseEscapedRune(start int, inClass bool) (rune, error) {
	c := p.next()
	switch c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'a':
		return '\a', nil
	case 'e':
		return 0x1B, nil
	case '0':
		// up to two further octal digits
		r := rune(0)
		for i := 0; i < 2 && !p.eof() && p.expr[p.pos] >= '0' && p.expr[p.pos] <= '7'; i++ {
			r = r*8 + rune(p.expr[p.pos]-'0')
			p.pos++
		}
		return r, nil
	case 'x':
		return p.parseHex(start)
	case 'b':
		if inClass {
			return '\b', nil
		}
	case 'p', 'P':
		return 0, p.errorf(UnsupportedFeature, start, "unicode property")
	}
	if c < utf8.RuneSelf && (isDigit(byte(c)) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		return 0, p.errorf(InvalidEscape, start, `\`+string(c))
	}
	return c, nil
}

// parseHex parses the digits of \xHH or \x{H...}.
func (p *parser) parseHex(start int) (rune, error) {
	if p.eat("{") {
		end := strings.IndexByte(p.expr[p.pos:], '}')
		if end <= 0 || end > 8 {
			return 0, p.errorf(InvalidEscape, start, "malformed \\x{...}")
		}
		r, ok := hexValue(p.expr[p.pos : p.pos+end])
		if !ok || r > utf8.MaxRune {
			return 0, p.errorf(InvalidEscape, start, "malformed \\x{...}")
		}
		p.pos += end + 1
		return r, nil
	}
	n := 0
	for n < 2 && p.pos+n < len(p.expr) && isHex(p.expr[p.pos+n]) {
		n++
	}
	if n == 0 {
		return 0, p.errorf(InvalidEscape, start, `\x needs hex digits`)
	}
	r, _ := hexValue(p.expr[p.pos : p.pos+n])
	p.pos += n
	return r, nil
}

// parseClass parses a bracket expression starting at '['.
func (p *parser) parseClass() (*Regexp, error) {
	start := p.pos
	p.pos++ // '['
	negate := p.eat("^")

	b := charset.NewBuilder()
	first := true
	for {
		if p.eof() {
			return nil, p.errorf(UnbalancedBracket, start, "missing ']'")
		}
		if p.peek() == ']' && !first {
			p.pos++
			break
		}
		first = false

		if p.isPosixClass() {
			return nil, p.errorf(UnsupportedFeature, p.pos, "POSIX class")
		}

		itemStart := p.pos
		lo, cls, err := p.parseClassItem()
		if err != nil {
			return nil, err
		}
		if cls != nil {
			b.AddRanges(cls)
			continue
		}

		// A '-' forms a range unless it is the last character of the class.
		if p.pos+1 < len(p.expr) && p.expr[p.pos] == '-' && p.expr[p.pos+1] != ']' {
			p.pos++
			hi, hcls, err := p.parseClassItem()
			if err != nil {
				return nil, err
			}
			if hcls != nil {
				// [a-\d] reads as 'a', '-' and the class.
				b.AddRune(lo)
				b.AddRune('-')
				b.AddRanges(hcls)
				continue
			}
			if hi < lo {
				return nil, p.errorf(InvalidRange, itemStart, string(lo)+"-"+string(hi))
			}
			b.AddRange(lo, hi)
			continue
		}
		b.AddRune(lo)
	}

	return &Regexp{Op: OpClass, Class: b.Ranges(), Negate: negate, Pos: start}, nil
}

// isPosixClass reports whether a [:name:] bracket starts at pos.
func (p *parser) isPosixClass() bool {
	rest := p.expr[p.pos:]
	if !strings.HasPrefix(rest, "[:") && !strings.HasPrefix(rest, "[=") && !strings.HasPrefix(rest, "[.") {
		return false
	}
	end := strings.Index(rest[2:], string(rest[1])+"]")
	if end < 0 {
		return false
	}
	name := strings.TrimPrefix(rest[2:2+end], "^")
	for i := 0; i < len(name); i++ {
		if c := name[i]; !(c >= 'a' && c <= 'z') {
			return false
		}
	}
	return name != ""
}

// parseClassItem parses one class member. It returns either a single code
// point or, for shorthand escapes, a range list.
func (p *parser) parseClassItem() (rune, charset.Ranges, error) {
	start := p.pos
	if p.peek() != '\\' {
		return p.next(), nil, nil
	}
	p.pos++
	if p.eof() {
		return 0, nil, p.errorf(UnbalancedBracket, start, "missing ']'")
	}
	c := p.peek()
	if cls, ok := shorthand(c); ok {
		p.pos++
		if c >= 'A' && c <= 'Z' {
			cls = cls.Invert()
		}
		return 0, cls, nil
	}
	switch c {
	case 'B', 'A', 'z', 'Z', 'G', 'Q', 'E':
		return 0, nil, p.errorf(InvalidEscape, start, `\`+string(c)+" inside class")
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return 0, nil, p.errorf(InvalidEscape, start, "backreference inside class")
	}
	r, err := p.parseEscapedRune(start, true)
	return r, nil, err
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexValue(s string) (rune, bool) {
	var r rune
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d byte
		switch {
		case isDigit(c):
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(d)
	}
	return r, true
}
