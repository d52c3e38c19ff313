// File: proto/codec.go
// Package proto implements the marshalling/demarshalling engine and
// dispatcher (spec C3-C5): encoding and decoding typed argument lists
// per message signature, and invoking the typed handler for a decoded
// message.
//
// Grounded on the corpus's core/protocol/frame_codec.go pairing of
// DecodeFrameFromBytes/EncodeFrameToBytes, adapted from a fixed
// WebSocket frame header to the display protocol's
// [object_id][size<<16|opcode] header and per-signature body codes.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package proto

import "encoding/binary"

// HeaderSize is the fixed 8-byte frame header: object id plus the
// packed size/opcode word.
const HeaderSize = 8

// MaxFrameSize is the largest frame the 16-bit size field can express.
const MaxFrameSize = 0xFFFF

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// pad4 returns n rounded up to the next multiple of 4.
func pad4(n int) int { return (n + 3) &^ 3 }

// DecodeHeader splits the 8-byte frame header into the target object
// id, frame size (including the header), and opcode.
func DecodeHeader(hdr []byte) (object uint32, size int, opcode uint16) {
	object = readU32(hdr[0:4])
	word := readU32(hdr[4:8])
	size = int(word >> 16)
	opcode = uint16(word & 0xFFFF)
	return
}

// EncodeHeader packs object/size/opcode into an 8-byte header.
func EncodeHeader(object uint32, size int, opcode uint16) []byte {
	buf := appendU32(nil, object)
	buf = appendU32(buf, uint32(size)<<16|uint32(opcode))
	return buf
}
