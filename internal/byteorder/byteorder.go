package byteorder

import (
	"encoding/binary"
	"math"
)

// everything on the bridge wire is little-endian, which is also host order
// on every machine the game runs on. the names below still follow the
// htonl/ntohl pattern:
//
// h   = host
// le  = little-endian wire
// 32  = 32 bit
// f32 = ieee 754 single

func Htole32(val uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, val)
	return buf
}

func Letoh32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

func Htolef32(val float32) []byte {
	return Htole32(math.Float32bits(val))
}

func Letohf32(buf []byte) float32 {
	return math.Float32frombits(Letoh32(buf))
}
