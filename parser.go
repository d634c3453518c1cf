package jstok

// codeOK is the internal "no failure" sentinel used by helpers that
// otherwise report a Code. It is never surfaced to callers.
const codeOK Code = 0

// Parser scans a JSON byte buffer into a flat token slice. Zero value is
// not usable; construct one with New.
//
// A Parser is not re-entrant: a single goroutine must drive one Parser
// at a time, and the caller owns both the input buffer and the token
// slice. Parse does not allocate on a path that ends in success. Every
// failure, ErrPartial included, allocates the *ParseError it returns.
type Parser struct {
	cfg   config
	stack frameStack

	pos      int
	toknext  int
	rootDone bool

	errPos  int
	errCode Code
}

// New constructs a Parser ready to Parse from byte 0. Config that scales
// the frame stack (WithMaxDepth) can only be set here: unlike Reset,
// New always allocates a fresh frame stack.
func New(opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Parser{cfg: cfg}
	p.stack = newFrameStack(cfg.maxDepth)
	p.Reset()
	return p
}

// Reset returns the Parser to its initial state so it can parse a new,
// unrelated input from byte 0. It does not resize the frame stack.
func (p *Parser) Reset() {
	p.stack.reset()
	p.pos = 0
	p.toknext = 0
	p.rootDone = false
	p.errPos = -1
	p.errCode = codeOK
}

// ErrorPos returns the best-effort byte offset of the last failure, or
// -1 if the parser has not failed.
func (p *Parser) ErrorPos() int { return p.errPos }

// Pos returns the parser's current scan position: the offset of the
// next unexamined byte.
func (p *Parser) Pos() int { return p.pos }

// Depth returns the number of currently open containers.
func (p *Parser) Depth() int { return p.stack.depth }

// Parse scans buf from the parser's current position and appends tokens
// to tokens (starting at its existing length is not supported — tokens
// is treated as pre-sized capacity, and token count is Parser-relative,
// matching the reference implementation's fixed array semantics). Pass
// a nil tokens slice for count-only mode: Parse still returns the exact
// token count that a subsequent call with a real slice of that capacity
// would use.
//
// Successive calls across a resumed parse (following ErrPartial) MUST
// pass the same backing array with a length greater than or equal to
// the previous call's, and the same tokens slice (or another nil, in
// count-only mode). Calling Parse again with a shorter buffer, or after
// a non-ErrPartial return, has undefined results — Reset first.
//
// On success, Parse returns the number of tokens used (or that would be
// used, in count-only mode) and a nil error. On failure it returns a
// negative count and a *ParseError wrapping one of ErrNoMem, ErrInvalid,
// ErrPartial, or ErrDepth.
func (p *Parser) Parse(buf []byte, tokens []Token) (int, error) {
	p.errPos = -1
	p.errCode = codeOK

	n := len(buf)
	for p.pos < n {
		c := buf[p.pos]

		if isSpace(c) {
			p.pos++
			continue
		}

		fr, hasFrame := p.top()

		switch c {
		case '{':
			if code := p.openContainer(buf, tokens, Object); code != codeOK {
				return p.fail(code)
			}
			continue

		case '[':
			if code := p.openContainer(buf, tokens, Array); code != codeOK {
				return p.fail(code)
			}
			continue

		case '}':
			if code := p.closeContainer(tokens, Object); code != codeOK {
				return p.fail(code)
			}
			continue

		case ']':
			if code := p.closeContainer(tokens, Array); code != codeOK {
				return p.fail(code)
			}
			continue

		case ':':
			if !hasFrame || fr.kind != Object || fr.sub != objColon {
				return p.fail(p.setErr(ErrInvalid, p.pos))
			}
			fr.sub = objValue
			p.pos++
			continue

		case ',':
			if !hasFrame {
				return p.fail(p.setErr(ErrInvalid, p.pos))
			}
			if fr.kind == Object {
				if fr.sub != objCommaOrEnd {
					return p.fail(p.setErr(ErrInvalid, p.pos))
				}
				fr.sub = objKey
			} else {
				if fr.sub != arrCommaOrEnd {
					return p.fail(p.setErr(ErrInvalid, p.pos))
				}
				fr.sub = arrValue
			}
			p.pos++
			continue

		case '"':
			if hasFrame && fr.kind == Object && (fr.sub == objKeyOrEnd || fr.sub == objKey) {
				if code := p.parseKey(buf, tokens, fr); code != codeOK {
					return p.fail(code)
				}
				continue
			}
			if code := p.parseStringValue(buf, tokens, fr); code != codeOK {
				return p.fail(code)
			}
			continue

		default:
			if code := p.parsePrimitiveValue(buf, tokens, fr); code != codeOK {
				return p.fail(code)
			}
			continue
		}
	}

	if p.stack.depth != 0 {
		return p.fail(p.setErr(ErrPartial, p.pos))
	}
	if !p.rootDone {
		return p.fail(p.setErr(ErrPartial, p.pos))
	}

	return p.toknext, nil
}

func (p *Parser) top() (*frame, bool) { return p.stack.top() }

func (p *Parser) fail(code Code) (int, error) {
	return -1, &ParseError{Code: code, Pos: p.errPos}
}

func (p *Parser) setErr(code Code, pos int) Code {
	p.errCode = code
	p.errPos = pos
	return code
}

// newToken allocates the next token slot. With a non-nil tokens slice it
// writes the fixed shape and returns the new index; in count-only mode
// it only advances toknext. Either way toknext advances identically,
// which is the tested count-only/token-mode parity invariant.
func (p *Parser) newToken(tokens []Token, kind Kind, start, end, parent int) (int, Code) {
	if tokens != nil {
		if p.toknext >= len(tokens) {
			return -1, p.setErr(ErrNoMem, p.pos)
		}
		idx := p.toknext
		tokens[idx] = Token{Kind: kind, Start: start, End: end, Size: 0, Parent: -1}
		if p.cfg.parentLinks {
			tokens[idx].Parent = parent
		}
		p.toknext++
		return idx, codeOK
	}
	idx := p.toknext
	p.toknext++
	return idx, codeOK
}

// acceptValue validates that a value may appear at the current position
// and updates the enclosing container's bookkeeping exactly once. It is
// called immediately before any value (primitive, string, or open
// container) is committed.
func (p *Parser) acceptValue(fr *frame, tokens []Token) Code {
	if fr == nil {
		if p.rootDone && !p.cfg.permissive {
			return p.setErr(ErrInvalid, p.pos)
		}
		p.rootDone = true
		return codeOK
	}

	switch fr.kind {
	case Array:
		if fr.sub != arrValueOrEnd && fr.sub != arrValue {
			return p.setErr(ErrInvalid, p.pos)
		}
		p.incSize(fr, tokens)
		fr.sub = arrCommaOrEnd
		return codeOK
	case Object:
		if fr.sub != objValue {
			return p.setErr(ErrInvalid, p.pos)
		}
		p.incSize(fr, tokens)
		fr.sub = objCommaOrEnd
		return codeOK
	default:
		return p.setErr(ErrInvalid, p.pos)
	}
}

// acceptKey validates that a string may appear as an object key. Unlike
// acceptValue it does not touch Size: the pair is only counted once its
// value is accepted.
func (p *Parser) acceptKey(fr *frame) Code {
	if fr == nil || fr.kind != Object {
		return p.setErr(ErrInvalid, p.pos)
	}
	if fr.sub != objKeyOrEnd && fr.sub != objKey {
		return p.setErr(ErrInvalid, p.pos)
	}
	fr.sub = objColon
	return codeOK
}

func (p *Parser) incSize(fr *frame, tokens []Token) {
	if tokens == nil || fr.tok < 0 {
		return
	}
	tokens[fr.tok].Size++
}

func (p *Parser) decSize(fr *frame, tokens []Token) {
	if tokens == nil || fr.tok < 0 {
		return
	}
	tokens[fr.tok].Size--
}

// openContainer handles '{' and '['. It first accepts the container as
// a value in the enclosing context, then emits its token with a
// sentinel End and pushes a new frame. Because it can only fail on
// depth/capacity — the '{'/'[' byte itself is never partial — there is
// nothing to roll back here (contrast parseStringValue and
// parsePrimitiveValue, which can fail deep inside a partially-consumed
// value).
func (p *Parser) openContainer(buf []byte, tokens []Token, kind Kind) Code {
	fr, hasFrame := p.top()
	parent := -1
	if hasFrame {
		parent = fr.tok
	}

	if code := p.acceptValue(fr, tokens); code != codeOK {
		return code
	}

	tokIdx, code := p.newToken(tokens, kind, p.pos, -1, parent)
	if code != codeOK {
		return code
	}

	sub := objKeyOrEnd
	if kind == Array {
		sub = arrValueOrEnd
	}
	frameTok := tokIdx
	if tokens == nil {
		frameTok = -1
	}
	if !p.stack.push(kind, sub, frameTok) {
		return p.setErr(ErrDepth, p.pos)
	}

	p.pos++
	return codeOK
}

// closeContainer handles '}' and ']'.
func (p *Parser) closeContainer(tokens []Token, kind Kind) Code {
	fr, ok := p.top()
	if !ok || fr.kind != kind {
		return p.setErr(ErrInvalid, p.pos)
	}

	if kind == Object {
		if fr.sub != objKeyOrEnd && fr.sub != objCommaOrEnd {
			return p.setErr(ErrInvalid, p.pos)
		}
	} else {
		if fr.sub != arrValueOrEnd && fr.sub != arrCommaOrEnd {
			return p.setErr(ErrInvalid, p.pos)
		}
	}

	if tokens != nil && fr.tok >= 0 {
		tokens[fr.tok].End = p.pos + 1
	}
	p.stack.pop()
	p.pos++
	return codeOK
}

// parseKey consumes a string token as an object key.
func (p *Parser) parseKey(buf []byte, tokens []Token, fr *frame) Code {
	parent := -1
	if fr != nil {
		parent = fr.tok
	}
	end, at, res := scanString(buf, p.pos)
	switch res {
	case scanInvalid:
		return p.setErr(ErrInvalid, at)
	case scanPartial:
		// scanString never mutated p.pos, so the parser is already
		// positioned at the opening quote: no rollback needed.
		return p.setErr(ErrPartial, at)
	}

	if _, code := p.newToken(tokens, String, p.pos+1, end, parent); code != codeOK {
		return code
	}
	p.pos = end + 1

	return p.acceptKey(fr)
}

// parseStringValue consumes a string token appearing as a value (either
// at the root, in an array, or as an object's value after its colon).
// If the string is only a well-formed prefix, any acceptValue side
// effects already committed are rolled back atomically before
// reporting ErrPartial, so a resumed parse sees consistent state.
func (p *Parser) parseStringValue(buf []byte, tokens []Token, fr *frame) Code {
	savedSub := subState(0)
	if fr != nil {
		savedSub = fr.sub
	}
	savedRootDone := p.rootDone

	if code := p.acceptValue(fr, tokens); code != codeOK {
		return code
	}

	parent := -1
	if fr != nil {
		parent = fr.tok
	}
	end, at, res := scanString(buf, p.pos)
	switch res {
	case scanInvalid:
		return p.setErr(ErrInvalid, at)
	case scanPartial:
		p.rollbackAccept(fr, tokens, savedSub, savedRootDone)
		return p.setErr(ErrPartial, at)
	}

	if _, code := p.newToken(tokens, String, p.pos+1, end, parent); code != codeOK {
		return code
	}
	p.pos = end + 1
	return codeOK
}

// parsePrimitiveValue consumes true/false/null or a number appearing as
// a value. Same rollback discipline as parseStringValue.
func (p *Parser) parsePrimitiveValue(buf []byte, tokens []Token, fr *frame) Code {
	savedSub := subState(0)
	if fr != nil {
		savedSub = fr.sub
	}
	savedRootDone := p.rootDone

	if code := p.acceptValue(fr, tokens); code != codeOK {
		return code
	}

	parent := -1
	if fr != nil {
		parent = fr.tok
	}

	start := p.pos
	var end, at int
	var res outcome

	if start >= len(buf) {
		p.rollbackAccept(fr, tokens, savedSub, savedRootDone)
		return p.setErr(ErrPartial, start)
	}

	switch buf[start] {
	case 't':
		end, at, res = scanLiteral(buf, start, "true")
	case 'f':
		end, at, res = scanLiteral(buf, start, "false")
	case 'n':
		end, at, res = scanLiteral(buf, start, "null")
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		end, at, res = scanNumber(buf, start, p.cfg.permissive)
	default:
		p.rollbackAccept(fr, tokens, savedSub, savedRootDone)
		return p.setErr(ErrInvalid, start)
	}

	switch res {
	case scanInvalid:
		return p.setErr(ErrInvalid, at)
	case scanPartial:
		p.rollbackAccept(fr, tokens, savedSub, savedRootDone)
		return p.setErr(ErrPartial, at)
	}

	if _, code := p.newToken(tokens, Primitive, start, end, parent); code != codeOK {
		return code
	}
	p.pos = end
	return codeOK
}

// rollbackAccept undoes acceptValue's side effects when the value that
// followed turned out to be only a partial prefix: the parent's
// pre-accept substate and size, and root_done at the root, are restored
// so the parser is a faithful prefix-accepting state of one that had
// simply stopped just before this value. buf position needs no
// restoring here: none of the recognizers advance p.pos before
// confirming success.
func (p *Parser) rollbackAccept(fr *frame, tokens []Token, savedSub subState, savedRootDone bool) {
	if fr == nil {
		p.rootDone = savedRootDone
		return
	}
	p.decSize(fr, tokens)
	fr.sub = savedSub
}
