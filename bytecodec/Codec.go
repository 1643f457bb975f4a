//******************************************************************************************************
//  Codec.go - Gbtc
//
//  Copyright © 2021, Grid Protection Alliance.  All Rights Reserved.
//
//  Licensed to the Grid Protection Alliance (GPA) under one or more contributor license agreements. See
//  the NOTICE file distributed with this work for additional information regarding copyright ownership.
//  The GPA licenses this file to you under the MIT License (MIT), the "License"; you may not use this
//  file except in compliance with the License. You may obtain a copy of the License at:
//
//      http://opensource.org/licenses/MIT
//
//  Unless agreed to in writing, the subject software distributed under the License is distributed on an
//  "AS-IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. Refer to the
//  License for the specific language governing permissions and limitations.
//
//******************************************************************************************************

// Package bytecodec provides the big-endian primitive encode/decode routines shared by every wire
// format in the protocol engine, plus packing for the two composite wire types that do not map onto
// a single Go primitive: the RFC-4122 GUID and the architecture-neutral decimal-128 value.
package bytecodec

import (
	"encoding/binary"
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/gridstream/sttp/guid"
)

// ErrShortBuffer is returned when a decode call is given fewer bytes than the type requires.
var ErrShortBuffer = errors.New("bytecodec: buffer too short for requested type")

// PutBool writes a bool as a single byte (1 for true, 0 for false).
func PutBool(buffer []byte, value bool) {
	if value {
		buffer[0] = 1
	} else {
		buffer[0] = 0
	}
}

// Bool decodes a bool from a single byte.
func Bool(buffer []byte) (bool, error) {
	if len(buffer) < 1 {
		return false, ErrShortBuffer
	}

	return buffer[0] != 0, nil
}

// PutInt16 writes an int16 in big-endian order.
func PutInt16(buffer []byte, value int16) {
	binary.BigEndian.PutUint16(buffer, uint16(value))
}

// Int16 decodes a big-endian int16.
func Int16(buffer []byte) (int16, error) {
	if len(buffer) < 2 {
		return 0, ErrShortBuffer
	}

	return int16(binary.BigEndian.Uint16(buffer)), nil
}

// PutUInt16 writes a uint16 in big-endian order.
func PutUInt16(buffer []byte, value uint16) {
	binary.BigEndian.PutUint16(buffer, value)
}

// UInt16 decodes a big-endian uint16.
func UInt16(buffer []byte) (uint16, error) {
	if len(buffer) < 2 {
		return 0, ErrShortBuffer
	}

	return binary.BigEndian.Uint16(buffer), nil
}

// PutInt32 writes an int32 in big-endian order.
func PutInt32(buffer []byte, value int32) {
	binary.BigEndian.PutUint32(buffer, uint32(value))
}

// Int32 decodes a big-endian int32.
func Int32(buffer []byte) (int32, error) {
	if len(buffer) < 4 {
		return 0, ErrShortBuffer
	}

	return int32(binary.BigEndian.Uint32(buffer)), nil
}

// PutUInt32 writes a uint32 in big-endian order.
func PutUInt32(buffer []byte, value uint32) {
	binary.BigEndian.PutUint32(buffer, value)
}

// UInt32 decodes a big-endian uint32.
func UInt32(buffer []byte) (uint32, error) {
	if len(buffer) < 4 {
		return 0, ErrShortBuffer
	}

	return binary.BigEndian.Uint32(buffer), nil
}

// PutInt64 writes an int64 in big-endian order.
func PutInt64(buffer []byte, value int64) {
	binary.BigEndian.PutUint64(buffer, uint64(value))
}

// Int64 decodes a big-endian int64.
func Int64(buffer []byte) (int64, error) {
	if len(buffer) < 8 {
		return 0, ErrShortBuffer
	}

	return int64(binary.BigEndian.Uint64(buffer)), nil
}

// PutUInt64 writes a uint64 in big-endian order.
func PutUInt64(buffer []byte, value uint64) {
	binary.BigEndian.PutUint64(buffer, value)
}

// UInt64 decodes a big-endian uint64.
func UInt64(buffer []byte) (uint64, error) {
	if len(buffer) < 8 {
		return 0, ErrShortBuffer
	}

	return binary.BigEndian.Uint64(buffer), nil
}

// PutFloat32 writes a float32 in big-endian IEEE-754 order.
func PutFloat32(buffer []byte, value float32) {
	binary.BigEndian.PutUint32(buffer, math.Float32bits(value))
}

// Float32 decodes a big-endian IEEE-754 float32.
func Float32(buffer []byte) (float32, error) {
	if len(buffer) < 4 {
		return 0, ErrShortBuffer
	}

	return math.Float32frombits(binary.BigEndian.Uint32(buffer)), nil
}

// PutFloat64 writes a float64 in big-endian IEEE-754 order.
func PutFloat64(buffer []byte, value float64) {
	binary.BigEndian.PutUint64(buffer, math.Float64bits(value))
}

// Float64 decodes a big-endian IEEE-754 float64.
func Float64(buffer []byte) (float64, error) {
	if len(buffer) < 8 {
		return 0, ErrShortBuffer
	}

	return math.Float64frombits(binary.BigEndian.Uint64(buffer)), nil
}

// PutGuid writes the 16-byte RFC-4122 big-endian representation of a Guid.
func PutGuid(buffer []byte, value guid.Guid) {
	copy(buffer[:16], value.Bytes())
}

// Guid decodes a 16-byte RFC-4122 big-endian Guid.
func Guid(buffer []byte) (guid.Guid, error) {
	if len(buffer) < 16 {
		return guid.Empty, ErrShortBuffer
	}

	return guid.FromBytes(buffer[:16], false)
}

// Decimal128Size is the wire size, in bytes, of a decimal-128 value.
const Decimal128Size = 16

// PutDecimal128 writes a decimal.Decimal as an architecture-neutral 16-byte value using the
// .NET Decimal wire layout: {flags, high, low, mid}, each 32-bit component big-endian. The
// scale is carried in bits 16-23 of flags and the sign in its high bit.
func PutDecimal128(buffer []byte, value decimal.Decimal) {
	coeff := value.Coefficient()
	scale := uint8(-value.Exponent())

	negative := coeff.Sign() < 0

	var absBytes [12]byte
	new(big.Int).Abs(coeff).FillBytes(absBytes[:])

	high := binary.BigEndian.Uint32(absBytes[0:4])
	mid := binary.BigEndian.Uint32(absBytes[4:8])
	low := binary.BigEndian.Uint32(absBytes[8:12])

	var flags uint32
	flags = uint32(scale) << 16

	if negative {
		flags |= 0x80000000
	}

	binary.BigEndian.PutUint32(buffer[0:4], flags)
	binary.BigEndian.PutUint32(buffer[4:8], high)
	binary.BigEndian.PutUint32(buffer[8:12], low)
	binary.BigEndian.PutUint32(buffer[12:16], mid)
}

// Decimal128 decodes a 16-byte architecture-neutral decimal value written by PutDecimal128.
func Decimal128(buffer []byte) (decimal.Decimal, error) {
	if len(buffer) < Decimal128Size {
		return decimal.Decimal{}, ErrShortBuffer
	}

	flags := binary.BigEndian.Uint32(buffer[0:4])
	high := binary.BigEndian.Uint32(buffer[4:8])
	low := binary.BigEndian.Uint32(buffer[8:12])
	mid := binary.BigEndian.Uint32(buffer[12:16])

	scale := int32((flags >> 16) & 0xFF)
	negative := flags&0x80000000 != 0

	var raw [12]byte
	binary.BigEndian.PutUint32(raw[0:4], high)
	binary.BigEndian.PutUint32(raw[4:8], mid)
	binary.BigEndian.PutUint32(raw[8:12], low)

	coeff := new(big.Int).SetBytes(raw[:])

	value := decimal.NewFromBigInt(coeff, -scale)

	if negative {
		value = value.Neg()
	}

	return value, nil
}
