package protocol

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Provenance says which side produced a packet and therefore which selector
// space its type id lives in. the values double as the envelope origin.
type Provenance uint32

const (
	// ProvenanceAuto is "not supplied": decode infers it from the envelope
	// origin, encode uses the codec default.
	ProvenanceAuto   Provenance = 0
	ProvenanceServer Provenance = 1
	ProvenanceClient Provenance = 2
)

var _ envconfig.Decoder = (*Provenance)(nil)

func (p Provenance) Valid() bool {
	return p == ProvenanceServer || p == ProvenanceClient
}

func (p Provenance) String() string {
	switch p {
	case ProvenanceAuto:
		return "auto"
	case ProvenanceServer:
		return "server"
	case ProvenanceClient:
		return "client"
	default:
		return fmt.Sprintf("Provenance(%d)", uint32(p))
	}
}

// Decode implements envconfig.Decoder.
func (p *Provenance) Decode(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		*p = ProvenanceAuto
	case "server":
		*p = ProvenanceServer
	case "client":
		*p = ProvenanceClient
	default:
		return fmt.Errorf("unknown provenance %q", value)
	}
	return nil
}

// ResolveProvenance returns explicit when it was supplied and otherwise
// derives the provenance from the envelope origin (1 server, 2 client).
func ResolveProvenance(explicit Provenance, origin uint32) (Provenance, error) {
	if explicit != ProvenanceAuto {
		if !explicit.Valid() {
			return 0, &EnumError{Enum: "provenance", Value: uint32(explicit)}
		}
		return explicit, nil
	}
	p := Provenance(origin)
	if !p.Valid() {
		return 0, &EnumError{Enum: "origin", Value: origin}
	}
	return p, nil
}
