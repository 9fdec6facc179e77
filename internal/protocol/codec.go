package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Codec turns byte streams into packets and packets into frames. it holds no
// per-connection state and is safe for concurrent use.
type Codec struct {
	registry          *Registry
	logger            *log.Logger
	metrics           *metrics
	defaultProvenance Provenance
	maxFrameLength    uint32
}

type Option func(*Codec)

func WithRegistry(registry *Registry) Option {
	return func(c *Codec) {
		c.registry = registry
	}
}

// WithDefaultProvenance sets what Encode uses for ProvenanceAuto. Auto
// itself leaves the default (client) alone.
func WithDefaultProvenance(p Provenance) Option {
	return func(c *Codec) {
		if p.Valid() {
			c.defaultProvenance = p
		}
	}
}

// WithMaxFrameLength caps total_length; longer frames are corrupt. 0
// disables the cap.
func WithMaxFrameLength(n uint32) Option {
	return func(c *Codec) {
		c.maxFrameLength = n
	}
}

func WithMetrics(namespace string, registerer prometheus.Registerer) Option {
	return func(c *Codec) {
		c.metrics = newMetrics(namespace, registerer)
	}
}

func NewCodec(logger *log.Logger, opts ...Option) *Codec {
	// if logger is nil (which might be true in tests) => use default, but
	// silenced logger
	if logger == nil {
		tmp := log.DefaultLogger
		logger = &tmp
		logger.Writer = &log.IOWriter{Writer: io.Discard}
	}

	c := &Codec{
		logger:            logger,
		defaultProvenance: ProvenanceClient,
		maxFrameLength:    DefaultMaxFrameLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.metrics == nil {
		c.metrics = newMetrics(DefaultMetricsNamespace, nil)
	}

	return c
}

func (c *Codec) Registry() *Registry {
	return c.registry
}

// MaxFrameLength is the cap on total_length; 0 means none.
func (c *Codec) MaxFrameLength() uint32 {
	return c.maxFrameLength
}

// Decode slices every complete frame off the front of buf and decodes it.
// p selects the selector space; ProvenanceAuto infers it per frame from the
// envelope origin.
//
// Decoding stops at the first incomplete frame and everything from there on
// is returned as trailer, to be prepended to the next read. A frame whose
// payload is shorter than its fields is treated the same way. A frame with
// an invalid enum value or origin is skipped and reported; corrupt framing
// stops decoding and is reported. Packets decoded before any failure are
// always returned. The returned error is nil or a *multierror.Error.
func (c *Codec) Decode(buf []byte, p Provenance) (packets []Packet, trailer []byte, err error) {
	var errs *multierror.Error

	off := 0
	for off < len(buf) {
		env, n, err := ReadEnvelope(buf[off:], c.maxFrameLength)
		if err != nil {
			c.metrics.frameErrors.WithLabelValues("framing").Inc()
			c.logger.Error().
				Int("offset", off).
				Msgf("could not read envelope: %v", err)
			errs = multierror.Append(errs, &FrameError{Offset: off, Err: err})
			break
		}
		if n == 0 {
			break
		}

		pkt, err := c.decodeFrame(&env, p)
		if err != nil {
			if errors.Is(err, ErrTruncated) {
				c.metrics.frameErrors.WithLabelValues("truncated").Inc()
				c.logger.Warn().
					Int("offset", off).
					Uint32("selector", env.Selector).
					Msgf("payload shorter than its fields, leaving frame in trailer: %v", err)
				break
			}
			c.metrics.frameErrors.WithLabelValues("invalid").Inc()
			c.logger.Error().
				Int("offset", off).
				Uint32("selector", env.Selector).
				Msgf("could not decode frame: %v", err)
			errs = multierror.Append(errs, &FrameError{Offset: off, Selector: env.Selector, Err: err})
			off += n
			continue
		}

		packets = append(packets, pkt)
		off += n
	}

	trailer = bytes.Clone(buf[off:])
	if trailer == nil {
		trailer = []byte{}
	}
	return packets, trailer, errs.ErrorOrNil()
}

func (c *Codec) decodeFrame(env *Envelope, explicit Provenance) (Packet, error) {
	p, err := ResolveProvenance(explicit, env.Origin)
	if err != nil {
		return nil, err
	}

	pkt, err := c.registry.decodePayload(p, env.Selector, env.Payload)
	if err != nil {
		return nil, err
	}
	if unknown, ok := pkt.(*Unknown); ok {
		unknown.Origin = Provenance(env.Origin)
	}

	if pkt.Kind() == KindUnknown {
		c.metrics.unknownFrames.WithLabelValues(p.String()).Inc()
		c.logger.Debug().
			Str("provenance", p.String()).
			Uint32("selector", env.Selector).
			Int("payload_len", len(env.Payload)).
			Msg("unknown selector")
	}
	c.metrics.framesDecoded.WithLabelValues(pkt.Kind().String()).Inc()
	c.logger.Debug().
		Str("kind", pkt.Kind().String()).
		Str("provenance", p.String()).
		Msg("decoded")

	return pkt, nil
}

// Encode frames pkt. ProvenanceAuto uses the origin an Unknown arrived
// with, and otherwise the codec default, which is client unless configured
// otherwise. The provenance is written as the envelope origin.
func (c *Codec) Encode(pkt Packet, p Provenance) ([]byte, error) {
	if pkt == nil {
		return nil, fmt.Errorf("%w: nil packet", ErrUnregisteredKind)
	}
	if p == ProvenanceAuto {
		p = c.defaultProvenance
		if unknown, ok := pkt.(*Unknown); ok && unknown.Origin.Valid() {
			p = unknown.Origin
		}
	}
	if !p.Valid() {
		return nil, &EnumError{Enum: "provenance", Value: uint32(p)}
	}

	var selector uint32
	switch pkt := pkt.(type) {
	case *Unknown:
		selector = pkt.Selector
	default:
		s, ok := c.registry.Selector(pkt.Kind(), p)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnregisteredKind, pkt.Kind())
		}
		selector = s
	}
	if err := c.registry.checkEncodable(pkt); err != nil {
		return nil, err
	}

	payload, err := pkt.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s: %w", pkt.Kind(), err)
	}

	env := Envelope{
		Origin:   uint32(p),
		Selector: selector,
		Payload:  payload,
	}
	data, err := env.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("could not marshal envelope: %w", err)
	}

	c.metrics.framesEncoded.WithLabelValues(pkt.Kind().String()).Inc()
	c.logger.Debug().
		Str("kind", pkt.Kind().String()).
		Str("provenance", p.String()).
		Int("len", len(data)).
		Msg("encoded")

	return data, nil
}
