// Package wire holds the fixed-width primitives every bridge packet is made
// of: little-endian 32-bit words, floats, word-sized booleans, single bytes
// and the two length-prefixed text encodings.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/blukai/bridgelink/internal/byteorder"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const WordSize = 4

var (
	ErrTruncated = errors.New("wire: truncated data")
	// ErrInvalidText means a string to be written is not valid utf-8.
	ErrInvalidText = errors.New("wire: invalid utf-8 text")
)

// TextEncoding tells which of the two string forms a packet kind carries.
type TextEncoding uint8

const (
	TextNone TextEncoding = iota
	// Narrow is a u32 byte count followed by that many single-byte
	// characters, no terminator.
	TextNarrow
	// Wide is a u32 count of utf-16 code units, including a trailing NUL
	// unit, followed by the units in little-endian order.
	TextWide
)

func (e TextEncoding) String() string {
	switch e {
	case TextNone:
		return "none"
	case TextNarrow:
		return "narrow"
	case TextWide:
		return "wide"
	default:
		return fmt.Sprintf("TextEncoding(%d)", uint8(e))
	}
}

var (
	narrowCharset = charmap.ISO8859_1
	wideCharset   = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// Reader consumes primitives from the front of a payload. it never copies
// the underlying slice except for Bytes and Rest.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len reports the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.next(WordSize)
	if err != nil {
		return 0, err
	}
	return byteorder.Letoh32(b), nil
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *Reader) Float32() (float32, error) {
	b, err := r.next(WordSize)
	if err != nil {
		return 0, err
	}
	return byteorder.Letohf32(b), nil
}

// Bool reads a whole word; any nonzero value is true.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint32()
	return v != 0, err
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// Rest returns a copy of everything not read yet. the result is never nil.
func (r *Reader) Rest() []byte {
	b := make([]byte, r.Len())
	copy(b, r.buf[r.off:])
	r.off = len(r.buf)
	return b
}

func (r *Reader) Narrow() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(r.Len()) {
		return "", ErrTruncated
	}
	raw, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	text, err := narrowCharset.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("could not decode narrow text: %w", err)
	}
	return string(text), nil
}

func (r *Reader) Wide() (string, error) {
	units, err := r.Uint32()
	if err != nil {
		return "", err
	}
	if uint64(units)*2 > uint64(r.Len()) {
		return "", ErrTruncated
	}
	raw, err := r.next(int(units) * 2)
	if err != nil {
		return "", err
	}
	// drop the terminator; peers are not always careful to send one
	if l := len(raw); l >= 2 && raw[l-2] == 0 && raw[l-1] == 0 {
		raw = raw[:l-2]
	}
	text, err := wideCharset.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("could not decode wide text: %w", err)
	}
	return string(text), nil
}

// Text reads a string in the given encoding.
func (r *Reader) Text(enc TextEncoding) (string, error) {
	switch enc {
	case TextNarrow:
		return r.Narrow()
	case TextWide:
		return r.Wide()
	default:
		return "", fmt.Errorf("no text encoding (%s)", enc)
	}
}

// Writer appends primitives to an in-memory buffer. writes to a
// bytes.Buffer never fail, so only the text encoders return errors.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the written bytes. the result is never nil.
func (w *Writer) Bytes() []byte {
	if w.buf.Len() == 0 {
		return []byte{}
	}
	return w.buf.Bytes()
}

func (w *Writer) Write(b []byte) {
	w.buf.Write(b)
}

func (w *Writer) PutUint8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) PutUint32(v uint32) {
	w.buf.Write(byteorder.Htole32(v))
}

func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

func (w *Writer) PutFloat32(v float32) {
	w.buf.Write(byteorder.Htolef32(v))
}

// PutBool writes the canonical word: 1 for true, 0 for false.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutUint32(1)
		return
	}
	w.PutUint32(0)
}

func (w *Writer) PutNarrow(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("could not encode narrow text: %w", ErrInvalidText)
	}
	raw, err := narrowCharset.NewEncoder().String(s)
	if err != nil {
		return fmt.Errorf("could not encode narrow text: %w", err)
	}
	w.PutUint32(uint32(len(raw)))
	w.buf.WriteString(raw)
	return nil
}

// PutWide rejects invalid utf-8 instead of letting the encoder swap it for
// U+FFFD.
func (w *Writer) PutWide(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("could not encode wide text: %w", ErrInvalidText)
	}
	raw, err := wideCharset.NewEncoder().String(s)
	if err != nil {
		return fmt.Errorf("could not encode wide text: %w", err)
	}
	// +1 for the NUL unit
	w.PutUint32(uint32(len(raw)/2 + 1))
	w.buf.WriteString(raw)
	w.buf.Write([]byte{0, 0})
	return nil
}

func (w *Writer) PutText(enc TextEncoding, s string) error {
	switch enc {
	case TextNarrow:
		return w.PutNarrow(s)
	case TextWide:
		return w.PutWide(s)
	default:
		return fmt.Errorf("no text encoding (%s)", enc)
	}
}
