// Package stream drives a jstok.Parser incrementally over an io.Reader,
// owning the growing buffer the resumable core deliberately leaves to
// its caller.
package stream

import (
	"errors"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/streamsprout/jstok"
)

const defaultReadSize = 4096

// Option configures a Reader at construction time, in the same
// functional-option style jstok.Option uses.
type Option func(*config)

type config struct {
	parserOpts []jstok.Option
	logger     hclog.Logger
	readSize   int
}

func defaultConfig() config {
	return config{
		logger:   hclog.NewNullLogger(),
		readSize: defaultReadSize,
	}
}

// WithParserOptions forwards options to the jstok.Parser the Reader
// drives internally.
func WithParserOptions(opts ...jstok.Option) Option {
	return func(c *config) { c.parserOpts = append(c.parserOpts, opts...) }
}

// WithLogger sets the logger the Reader reports buffer growth and
// truncated-input conditions to. Debug level only; nothing on the
// success path. Defaults to a discarding logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReadSize sets how many bytes Reader asks the underlying io.Reader
// for at a time when the parser reports ErrPartial.
func WithReadSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// Reader parses JSON incrementally from an io.Reader, growing an
// internal buffer only as far as needed to satisfy the parser.
type Reader struct {
	r        io.Reader
	buf      buffer
	parser   *jstok.Parser
	logger   hclog.Logger
	readSize int
}

// New returns a Reader that will parse JSON read from r.
func New(r io.Reader, opts ...Option) *Reader {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reader{
		r:        r,
		parser:   jstok.New(cfg.parserOpts...),
		logger:   cfg.logger.Named("jstok.stream"),
		readSize: cfg.readSize,
	}
}

// Reset discards any buffered input and prepares the Reader to parse a
// new, unrelated document from r.
func (rd *Reader) Reset(r io.Reader) {
	rd.r = r
	rd.buf.reset()
	rd.parser.Reset()
}

// Bytes returns the portion of the internal buffer read so far. Tokens
// returned by Tokens describe byte ranges within this slice.
func (rd *Reader) Bytes() []byte {
	return rd.buf.window()
}

// Tokens reads from the underlying io.Reader, growing the internal
// buffer and re-invoking the Parser as needed, until a full document has
// been tokenized or the input is exhausted or invalid. On success it
// returns the token count exactly as jstok.Parser.Parse would for a
// single call over the complete document.
//
// If the underlying reader returns io.EOF while the parser reports
// ErrPartial — a container left open, or a value cut off mid-token —
// Tokens returns io.ErrUnexpectedEOF rather than the raw ErrPartial,
// since there is no more input coming to resume with.
func (rd *Reader) Tokens(dst []jstok.Token) (int, error) {
	for {
		n, err := rd.parser.Parse(rd.buf.window(), dst)
		if err == nil {
			return n, nil
		}

		var pe *jstok.ParseError
		if !errors.As(err, &pe) || pe.Code != jstok.ErrPartial {
			return n, err
		}

		rd.logger.Debug("partial parse, growing buffer", "buffered", len(rd.buf.window()))
		grew, rerr := rd.fill()
		if grew == 0 {
			if rerr == nil || errors.Is(rerr, io.EOF) {
				rd.logger.Debug("input ended with an incomplete document", "pos", rd.parser.Pos())
				return n, io.ErrUnexpectedEOF
			}
			return n, rerr
		}
	}
}

// fill reads up to one readSize chunk from the underlying reader into
// the buffer, growing it first if needed, and returns the number of
// bytes appended.
func (rd *Reader) fill() (int, error) {
	tail := rd.buf.grow(rd.readSize)
	n, err := rd.r.Read(tail)
	if n > 0 {
		rd.buf.commit(n)
	}
	return n, err
}
