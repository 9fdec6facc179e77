package protocol_test

import (
	"errors"
	"testing"

	"github.com/blukai/bridgelink/internal/protocol"
	"github.com/matryer/is"
)

func TestEnvelopeEncoding(t *testing.T) {
	is := is.New(t)

	original := protocol.Envelope{
		Origin:   uint32(protocol.ProvenanceServer),
		Selector: protocol.SelectorDifficulty,
		Payload:  []byte{1, 2, 3, 4, 5},
	}
	is.Equal(original.RemainingLength(), uint32(9))
	is.Equal(original.TotalLength(), uint32(29))

	encoded, err := original.MarshalBinary()
	is.NoErr(err)
	is.Equal(len(encoded), 29)
	is.Equal(encoded[:4], []byte{0xef, 0xbe, 0xad, 0xde})
	is.Equal(encoded[12:16], []byte{0, 0, 0, 0})

	var decoded protocol.Envelope
	is.NoErr(decoded.UnmarshalBinary(encoded))
	is.Equal(decoded, original)

	t.Run("wrong length", func(t *testing.T) {
		is := is.New(t)
		var decoded protocol.Envelope
		err := decoded.UnmarshalBinary(append(encoded, 0))
		is.True(errors.Is(err, protocol.ErrFramingCorrupt))
	})
}

func TestReadEnvelope(t *testing.T) {
	env := protocol.Envelope{Origin: 2, Selector: 7, Payload: []byte("payload")}
	encoded, err := env.MarshalBinary()
	is.New(t).NoErr(err)

	t.Run("incomplete", func(t *testing.T) {
		is := is.New(t)
		for i := 0; i < len(encoded); i++ {
			_, n, err := protocol.ReadEnvelope(encoded[:i], protocol.DefaultMaxFrameLength)
			is.NoErr(err)
			is.Equal(n, 0)
		}
	})

	t.Run("complete", func(t *testing.T) {
		is := is.New(t)
		buf := append(append([]byte{}, encoded...), 0xaa, 0xbb)
		got, n, err := protocol.ReadEnvelope(buf, protocol.DefaultMaxFrameLength)
		is.NoErr(err)
		is.Equal(n, len(encoded))
		is.Equal(got, env)
	})

	t.Run("bad magic", func(t *testing.T) {
		is := is.New(t)
		buf := append([]byte{}, encoded...)
		buf[0] = 0
		_, n, err := protocol.ReadEnvelope(buf, protocol.DefaultMaxFrameLength)
		is.True(errors.Is(err, protocol.ErrFramingCorrupt))
		is.Equal(n, 0)
	})

	t.Run("below minimum", func(t *testing.T) {
		is := is.New(t)
		buf := append([]byte{}, encoded[:protocol.EnvelopeHeaderSize]...)
		buf[4], buf[16] = 20, 0
		_, _, err := protocol.ReadEnvelope(buf, 0)
		is.True(errors.Is(err, protocol.ErrFramingCorrupt))
	})
}
