// Package tracker folds decoded object updates into a live table of world
// objects, the way a client keeps its picture of the game.
package tracker

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/blukai/bridgelink/internal/protocol"
	"github.com/cespare/xxhash/v2"
	"github.com/phuslu/log"
)

// Fields is one object's accumulated state. it is never checked against a
// schema; whatever the records carried is stored as is.
type Fields map[string]any

// Tracker is not safe for concurrent use. drive it from the single goroutine
// that decodes a connection's stream.
type Tracker struct {
	logger *log.Logger

	objects map[uint32]Fields
}

func New(logger *log.Logger) *Tracker {
	// if logger is nil (which might be true in tests) => use default, but
	// silenced logger
	if logger == nil {
		tmp := log.DefaultLogger
		logger = &tmp
		logger.Writer = &log.IOWriter{Writer: io.Discard}
	}

	return &Tracker{
		logger:  logger,
		objects: make(map[uint32]Fields),
	}
}

// OnDecoded applies pkt if it is an object update or destroy; every other
// kind is ignored.
func (t *Tracker) OnDecoded(pkt protocol.Packet) {
	switch pkt := pkt.(type) {
	case *protocol.ObjectUpdate:
		for _, rec := range pkt.Records {
			t.ApplyUpdate(rec)
		}
	case *protocol.DestroyObject:
		t.ApplyDestroy(pkt.Object)
	}
}

// ApplyUpdate merges rec into its object's fields, creating the object on
// first sight. keys absent from rec keep their previous values. a record
// without a usable object id is dropped.
func (t *Tracker) ApplyUpdate(rec protocol.ObjectRecord) {
	id, ok := objectID(rec[protocol.FieldObject])
	if !ok {
		t.logger.Debug().
			Str("record", fmt.Sprintf("%v", rec)).
			Msg("skipping record without object id")
		return
	}

	fields, ok := t.objects[id]
	if !ok {
		fields = make(Fields, len(rec))
		t.objects[id] = fields
	}
	for k, v := range rec {
		fields[k] = v
	}
}

// ApplyDestroy forgets the object. unknown ids are fine.
func (t *Tracker) ApplyDestroy(id uint32) {
	delete(t.objects, id)
}

func objectID(v any) (uint32, bool) {
	switch v := v.(type) {
	case uint32:
		return v, true
	case uint64:
		return uint32(v), v <= 0xffffffff
	case uint:
		return uint32(v), uint64(v) <= 0xffffffff
	case int:
		return uint32(v), v >= 0 && int64(v) <= 0xffffffff
	case int32:
		return uint32(v), v >= 0
	case int64:
		return uint32(v), v >= 0 && v <= 0xffffffff
	default:
		return 0, false
	}
}

func (t *Tracker) Len() int {
	return len(t.objects)
}

// Object returns a copy of one object's fields.
func (t *Tracker) Object(id uint32) (Fields, bool) {
	fields, ok := t.objects[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(fields), true
}

// Snapshot copies the whole table; mutating it does not affect the tracker.
func (t *Tracker) Snapshot() map[uint32]Fields {
	snapshot := make(map[uint32]Fields, len(t.objects))
	for id, fields := range t.objects {
		snapshot[id] = maps.Clone(fields)
	}
	return snapshot
}

// Digest fingerprints one object's fields. two digests are equal when the
// objects hold the same keys with the same values.
func (t *Tracker) Digest(id uint32) (uint64, bool) {
	fields, ok := t.objects[id]
	if !ok {
		return 0, false
	}
	return digest(fields), true
}

func digest(fields Fields) uint64 {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := xxhash.New()
	for _, k := range keys {
		// %T keeps uint32(1) and float32(1) apart
		fmt.Fprintf(h, "%s=%T:%v;", k, fields[k], fields[k])
	}
	return h.Sum64()
}

// Changed compares the table with digests from an earlier call and returns
// the ids that are new or different, plus the digests to pass next time.
// objects that disappeared are reported too. a nil prev reports everything.
func (t *Tracker) Changed(prev map[uint32]uint64) (changed []uint32, next map[uint32]uint64) {
	next = make(map[uint32]uint64, len(t.objects))
	for id, fields := range t.objects {
		d := digest(fields)
		next[id] = d
		if old, ok := prev[id]; !ok || old != d {
			changed = append(changed, id)
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			changed = append(changed, id)
		}
	}
	slices.Sort(changed)
	return changed, next
}
