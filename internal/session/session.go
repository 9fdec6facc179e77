// Package session pairs a codec with a tracker for one connection: it holds
// the bytes left over between reads and keeps the object table current. it
// does no i/o; the owner of the socket hands it whatever it read.
package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/blukai/bridgelink/internal/protocol"
	"github.com/blukai/bridgelink/internal/tracker"
	"github.com/hashicorp/go-multierror"
	"github.com/phuslu/log"
)

// ErrCorrupt is returned by every Feed after the stream lost framing.
var ErrCorrupt = errors.New("session: stream corrupt")

// Session is not safe for concurrent use; one per connection.
type Session struct {
	codec   *protocol.Codec
	tracker *tracker.Tracker
	logger  *log.Logger

	// inbound is what the peer sends, outbound what we send. a client
	// reading from a server uses Server/Client.
	inbound  protocol.Provenance
	outbound protocol.Provenance

	trailer []byte
	corrupt error
}

func New(codec *protocol.Codec, inbound, outbound protocol.Provenance, logger *log.Logger) *Session {
	// if logger is nil (which might be true in tests) => use default, but
	// silenced logger
	if logger == nil {
		tmp := log.DefaultLogger
		logger = &tmp
		logger.Writer = &log.IOWriter{Writer: io.Discard}
	}

	return &Session{
		codec:   codec,
		tracker: tracker.New(logger),
		logger:  logger,

		inbound:  inbound,
		outbound: outbound,
	}
}

// NewClient is a session for the client side of a connection.
func NewClient(codec *protocol.Codec, logger *log.Logger) *Session {
	return New(codec, protocol.ProvenanceServer, protocol.ProvenanceClient, logger)
}

// NewServer is a session for the server side of a connection.
func NewServer(codec *protocol.Codec, logger *log.Logger) *Session {
	return New(codec, protocol.ProvenanceClient, protocol.ProvenanceServer, logger)
}

// Feed appends chunk to the bytes held from earlier calls, decodes every
// complete frame, applies them to the object table and returns them in
// arrival order. per-frame decode errors are returned alongside the packets
// that did decode. a complete frame whose payload is shorter than its fields
// can never decode, so it is dropped and reported wrapping ErrTruncated.
// once framing is lost every later call fails with ErrCorrupt.
func (s *Session) Feed(chunk []byte) ([]protocol.Packet, error) {
	if s.corrupt != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, s.corrupt)
	}

	var (
		packets []protocol.Packet
		errs    *multierror.Error
	)

	buf := append(s.trailer, chunk...)
	offset := 0
	for {
		decoded, trailer, err := s.codec.Decode(buf, s.inbound)
		for _, pkt := range decoded {
			s.tracker.OnDecoded(pkt)
		}
		packets = append(packets, decoded...)

		if err != nil {
			if errors.Is(err, protocol.ErrFramingCorrupt) {
				s.corrupt = err
				s.trailer = nil
				s.logger.Error().
					Msgf("stream lost framing: %v", err)
				return packets, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			errs = multierror.Append(errs, err)
		}

		// the codec stops at a frame it could not read. if that frame is
		// already complete, more bytes will not help.
		env, n, envErr := protocol.ReadEnvelope(trailer, s.codec.MaxFrameLength())
		if envErr != nil || n == 0 {
			s.trailer = trailer
			break
		}

		offset += len(buf) - len(trailer)
		s.logger.Warn().
			Int("offset", offset).
			Uint32("selector", env.Selector).
			Int("len", n).
			Msg("dropping frame with short payload")
		errs = multierror.Append(errs, &protocol.FrameError{
			Offset:   offset,
			Selector: env.Selector,
			Err:      fmt.Errorf("%w: payload shorter than its fields", protocol.ErrTruncated),
		})
		offset += n
		buf = trailer[n:]
	}

	if err := errs.ErrorOrNil(); err != nil {
		return packets, fmt.Errorf("could not decode some frames: %w", err)
	}

	s.logger.Debug().
		Int("packets", len(packets)).
		Int("pending", len(s.trailer)).
		Msg("fed")

	return packets, nil
}

// Encode frames pkt with the outbound provenance.
func (s *Session) Encode(pkt protocol.Packet) ([]byte, error) {
	return s.codec.Encode(pkt, s.outbound)
}

// Pending is the number of bytes waiting for the rest of their frame.
func (s *Session) Pending() int {
	return len(s.trailer)
}

// Objects is a copy of the current object table.
func (s *Session) Objects() map[uint32]tracker.Fields {
	return s.tracker.Snapshot()
}
