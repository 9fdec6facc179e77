package protocol

import (
	"fmt"

	"github.com/blukai/bridgelink/internal/wire"
)

// ObjectRecord is one object's partial state from an ObjectUpdate. only the
// fields the server chose to send are present. FieldObject and FieldType are
// always set on decoded records.
type ObjectRecord map[string]any

const (
	FieldObject = "object"
	FieldType   = "type"
)

type fieldKind uint8

const (
	fieldUint8 fieldKind = iota
	fieldUint32
	fieldFloat32
	fieldWide
)

type objectField struct {
	name string
	kind fieldKind
}

// objectSchema lists the optional fields of one object type in wire order;
// bit i of the record bitfield says whether field i follows.
type objectSchema []objectField

func (s objectSchema) bitfieldSize() int {
	return (len(s) + 7) / 8
}

func position(extra ...objectField) objectSchema {
	return append(objectSchema{
		{"x", fieldFloat32},
		{"y", fieldFloat32},
		{"z", fieldFloat32},
	}, extra...)
}

// objectSchemas covers the object types whose layouts are known. an update
// mentioning any other type can not be walked past, so the whole frame is
// kept as Unknown.
var objectSchemas = map[ObjectType]objectSchema{
	ObjectTypeBase: {
		{"name", fieldWide},
		{"shields_fore", fieldFloat32},
		{"shields_aft", fieldFloat32},
		{"index", fieldUint32},
		{"hull_id", fieldUint32},
		{"x", fieldFloat32},
		{"y", fieldFloat32},
		{"z", fieldFloat32},
	},
	ObjectTypeMine:      position(),
	ObjectTypeAnomaly:   position(objectField{"upgrade", fieldUint32}),
	ObjectTypeNebula:    position(objectField{"red", fieldFloat32}, objectField{"green", fieldFloat32}, objectField{"blue", fieldFloat32}),
	ObjectTypeBlackHole: position(),
	ObjectTypeAsteroid:  position(),
}

// ObjectUpdate is the server's state sync: a batch of sparse per-object
// patches.
type ObjectUpdate struct {
	Records []ObjectRecord
}

var _ leafPacket = (*ObjectUpdate)(nil)

func (*ObjectUpdate) Kind() Kind { return KindObjectUpdate }

func (p *ObjectUpdate) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	for i, rec := range p.Records {
		if err := marshalRecord(w, rec); err != nil {
			return nil, fmt.Errorf("could not marshal record %d: %w", i, err)
		}
	}
	w.PutUint32(0)
	return w.Bytes(), nil
}

func marshalRecord(w *wire.Writer, rec ObjectRecord) error {
	typ, ok := rec[FieldType].(ObjectType)
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrFieldType, FieldType, rec[FieldType])
	}
	id, ok := rec[FieldObject].(uint32)
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrFieldType, FieldObject, rec[FieldObject])
	}
	schema, ok := objectSchemas[typ]
	if !ok {
		return fmt.Errorf("%w: no schema for object type %s", ErrUnregisteredKind, typ)
	}

	bitfield := make([]byte, schema.bitfieldSize())
	fields := wire.NewWriter()
	for i, field := range schema {
		value, ok := rec[field.name]
		if !ok {
			continue
		}
		bitfield[i/8] |= 1 << (i % 8)
		if err := putField(fields, field, value); err != nil {
			return err
		}
	}

	w.PutUint8(uint8(typ))
	w.PutUint32(id)
	w.Write(bitfield)
	w.Write(fields.Bytes())
	return nil
}

func putField(w *wire.Writer, field objectField, value any) error {
	mismatch := func() error {
		return fmt.Errorf("%w: %s is %T", ErrFieldType, field.name, value)
	}
	switch field.kind {
	case fieldUint8:
		v, ok := value.(uint8)
		if !ok {
			return mismatch()
		}
		w.PutUint8(v)
	case fieldUint32:
		v, ok := value.(uint32)
		if !ok {
			return mismatch()
		}
		w.PutUint32(v)
	case fieldFloat32:
		v, ok := value.(float32)
		if !ok {
			return mismatch()
		}
		w.PutFloat32(v)
	case fieldWide:
		v, ok := value.(string)
		if !ok {
			return mismatch()
		}
		return w.PutWide(v)
	}
	return nil
}

func (p *ObjectUpdate) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	p.Records = nil
	for r.Len() > 0 {
		t, err := r.Uint8()
		if err != nil {
			return err
		}
		if ObjectType(t) == ObjectTypeEnd {
			// the terminator is a whole zero word
			_, err := r.Bytes(wire.WordSize - 1)
			return err
		}

		typ := ObjectType(t)
		schema, ok := objectSchemas[typ]
		if !ok {
			return fmt.Errorf("%w: %s", errUnsupportedObject, typ)
		}

		id, err := r.Uint32()
		if err != nil {
			return err
		}
		bitfield, err := r.Bytes(schema.bitfieldSize())
		if err != nil {
			return err
		}

		rec := ObjectRecord{FieldObject: id, FieldType: typ}
		for i, field := range schema {
			if bitfield[i/8]&(1<<(i%8)) == 0 {
				continue
			}
			value, err := readField(r, field)
			if err != nil {
				return fmt.Errorf("could not read %s.%s: %w", typ, field.name, err)
			}
			rec[field.name] = value
		}
		p.Records = append(p.Records, rec)
	}
	return nil
}

func readField(r *wire.Reader, field objectField) (any, error) {
	switch field.kind {
	case fieldUint8:
		return r.Uint8()
	case fieldUint32:
		return r.Uint32()
	case fieldFloat32:
		return r.Float32()
	case fieldWide:
		return r.Wide()
	default:
		return nil, fmt.Errorf("unhandled field kind %d", field.kind)
	}
}

// DestroyObject removes one object from the world.
type DestroyObject struct {
	ObjectType ObjectType
	Object     uint32
}

var _ leafPacket = (*DestroyObject)(nil)

func (*DestroyObject) Kind() Kind { return KindDestroyObject }

func (p *DestroyObject) MarshalBinary() ([]byte, error) {
	if !p.ObjectType.Valid() || p.ObjectType == ObjectTypeEnd {
		return nil, &EnumError{Enum: "object type", Value: uint32(p.ObjectType)}
	}
	w := wire.NewWriter()
	w.PutUint8(uint8(p.ObjectType))
	w.PutUint32(p.Object)
	return w.Bytes(), nil
}

func (p *DestroyObject) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	t, err := r.Uint8()
	if err != nil {
		return err
	}
	typ := ObjectType(t)
	if !typ.Valid() || typ == ObjectTypeEnd {
		return &EnumError{Enum: "object type", Value: uint32(t)}
	}
	p.ObjectType = typ
	p.Object, err = r.Uint32()
	return err
}
