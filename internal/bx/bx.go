// Package bx holds byte-layout primitives: fixed-width integer and
// float64 reads/writes at a byte offset, always big-endian.
//
// DavisBase stores every multi-byte field big-endian on disk regardless
// of host byte order, so unlike a typical Go program this package never
// reaches for the host's native order.
package bx

import (
	"encoding/binary"
	"math"
)

var BE = binary.BigEndian

// --- read ---

func U8(b []byte) uint8   { return b[0] }
func I8(b []byte) int8    { return int8(b[0]) }
func U16(b []byte) uint16 { return BE.Uint16(b) }
func I16(b []byte) int16  { return int16(U16(b)) }
func U32(b []byte) uint32 { return BE.Uint32(b) }
func I32(b []byte) int32  { return int32(U32(b)) }
func U64(b []byte) uint64 { return BE.Uint64(b) }
func I64(b []byte) int64  { return int64(U64(b)) }
func F64(b []byte) float64 {
	return math.Float64frombits(U64(b))
}

// --- write ---

func PutU8(b []byte, v uint8)   { b[0] = v }
func PutI8(b []byte, v int8)    { b[0] = byte(v) }
func PutU16(b []byte, v uint16) { BE.PutUint16(b, v) }
func PutI16(b []byte, v int16)  { PutU16(b, uint16(v)) }
func PutU32(b []byte, v uint32) { BE.PutUint32(b, v) }
func PutI32(b []byte, v int32)  { PutU32(b, uint32(v)) }
func PutU64(b []byte, v uint64) { BE.PutUint64(b, v) }
func PutI64(b []byte, v int64)  { PutU64(b, uint64(v)) }
func PutF64(b []byte, v float64) {
	PutU64(b, math.Float64bits(v))
}

// --- At (offset into a larger buffer) ---

func U8At(b []byte, off int) uint8    { return U8(b[off:]) }
func I8At(b []byte, off int) int8     { return I8(b[off:]) }
func U16At(b []byte, off int) uint16  { return U16(b[off:]) }
func I16At(b []byte, off int) int16   { return I16(b[off:]) }
func U32At(b []byte, off int) uint32  { return U32(b[off:]) }
func I32At(b []byte, off int) int32   { return I32(b[off:]) }
func U64At(b []byte, off int) uint64  { return U64(b[off:]) }
func I64At(b []byte, off int) int64   { return I64(b[off:]) }
func F64At(b []byte, off int) float64 { return F64(b[off:]) }

func PutU8At(b []byte, off int, v uint8)    { PutU8(b[off:], v) }
func PutI8At(b []byte, off int, v int8)     { PutI8(b[off:], v) }
func PutU16At(b []byte, off int, v uint16)  { PutU16(b[off:], v) }
func PutI16At(b []byte, off int, v int16)   { PutI16(b[off:], v) }
func PutU32At(b []byte, off int, v uint32)  { PutU32(b[off:], v) }
func PutI32At(b []byte, off int, v int32)   { PutI32(b[off:], v) }
func PutU64At(b []byte, off int, v uint64)  { PutU64(b[off:], v) }
func PutI64At(b []byte, off int, v int64)   { PutI64(b[off:], v) }
func PutF64At(b []byte, off int, v float64) { PutF64(b[off:], v) }
