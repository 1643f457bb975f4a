//******************************************************************************************************
//  Encoder.go - Gbtc
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
//  Code Modification History:
//  ----------------------------------------------------------------------------------------------------
//  07/31/2026 - Generated original version of source code. Mirrors Decoder.go's code-word state
//       machine bit for bit: every branch below is the inverse of the matching TryGetMeasurement
//       branch, reusing the same pointMetadata adaptation so an Encoder and Decoder pair stay
//       synchronized without any side-channel negotiation of the current coding mode.
//
//******************************************************************************************************

package tssc

import "math"

// minEncoderRoom is the largest number of bytes a single measurement plus a terminating EndOfStream
// code could ever add to the working buffer (point ID, timestamp, state flags, and value each cost at
// most one code plus a handful of raw bytes), with headroom to spare.
const minEncoderRoom = 48

// Encoder is the encoder for the Time-Series Special Compression (TSSC) algorithm of STTP.
type Encoder struct {
	data         []byte
	position     int
	lastPosition int

	// pendingBytePos is the buffer slot reserved for the byte currently being assembled in
	// bitStreamCache; it is claimed the moment a fresh byte starts accumulating bits, mirroring how
	// the decoder's position already points past a byte the instant it is pulled into its cache.
	pendingBytePos int

	prevTimestamp1 int64
	prevTimestamp2 int64

	prevTimeDelta1 int64
	prevTimeDelta2 int64
	prevTimeDelta3 int64
	prevTimeDelta4 int64

	lastPoint *pointMetadata
	points    map[int32]*pointMetadata

	bitStreamCount int32
	bitStreamCache int32

	// SequenceNumber is the sequence used to synchronize encoding and decoding.
	SequenceNumber uint16
}

// NewEncoder creates a new TSSC encoder.
func NewEncoder(maxSignalIndex uint32) *Encoder {
	te := &Encoder{
		prevTimeDelta1: math.MaxInt64,
		prevTimeDelta2: math.MaxInt64,
		prevTimeDelta3: math.MaxInt64,
		prevTimeDelta4: math.MaxInt64,
		points:         make(map[int32]*pointMetadata, maxSignalIndex+1),
	}

	te.lastPoint = te.newPointMetadata()

	return te
}

func (te *Encoder) newPointMetadata() *pointMetadata {
	return newPointMetadata(te.writeBits, nil, nil)
}

func (te *Encoder) pointFor(id int32) *pointMetadata {
	point, ok := te.points[id]

	if !ok || point == nil {
		point = te.newPointMetadata()
		te.points[id] = point
		point.PrevNextPointID1 = id + 1
	}

	return point
}

func (te *Encoder) clearBitStream() {
	te.bitStreamCount = 0
	te.bitStreamCache = 0
}

// SetBuffer assigns the working buffer to use for encoding measurements.
func (te *Encoder) SetBuffer(data []byte) {
	te.clearBitStream()
	te.data = data
	te.position = 0
	te.lastPosition = len(data)
}

// hasRoom reports whether the working buffer has enough space remaining for one more measurement
// plus a final EndOfStream marker.
func (te *Encoder) hasRoom() bool {
	return te.lastPosition-te.position >= minEncoderRoom
}

// TryAddMeasurement attempts to encode one measurement into the working buffer, returning false
// (without error) when the buffer does not have enough remaining room; the caller should finish the
// current block, dispatch it, assign a fresh buffer, and retry.
//gocyclo:ignore
func (te *Encoder) TryAddMeasurement(id int32, timestamp int64, stateFlags uint32, value float32) (bool, error) {
	if !te.hasRoom() {
		return false, nil
	}

	predictedID := te.lastPoint.PrevNextPointID1

	if id != predictedID {
		if err := te.encodePointID(id, predictedID); err != nil {
			return false, err
		}

		te.lastPoint.PrevNextPointID1 = id
	}

	nextPoint := te.pointFor(id)

	if err := te.emitTimeSlot(nextPoint, timestamp, stateFlags, value); err != nil {
		return false, err
	}

	te.lastPoint = nextPoint

	return true, nil
}

// FinishBlock writes the terminating EndOfStream code and flushes any partially filled byte still
// held in the bit cache, returning the total number of bytes now committed to the working buffer.
// Terminating explicitly (rather than relying on the buffer simply running out) keeps a short final
// byte's zero padding from ever being mistaken for a spurious extra measurement.
func (te *Encoder) FinishBlock() (int, error) {
	if err := te.lastPoint.WriteCode(int32(codeWords.EndOfStream)); err != nil {
		return 0, err
	}

	if te.bitStreamCount > 0 {
		te.data[te.pendingBytePos] = byte(te.bitStreamCache << uint(8-te.bitStreamCount))
		te.clearBitStream()
	}

	return te.position, nil
}

// emitTimeSlot writes the timestamp's code only if the timestamp actually changed from the previous
// measurement's; otherwise it defers straight to the flags slot, letting that slot's code double as
// the "timestamp unchanged" signal exactly as Decoder's TryGetMeasurement expects.
func (te *Encoder) emitTimeSlot(nextPoint *pointMetadata, timestamp int64, stateFlags uint32, value float32) error {
	if timestamp != te.prevTimestamp1 {
		if err := te.encodeTimestamp(timestamp); err != nil {
			return err
		}
	}

	return te.emitFlagsSlot(nextPoint, stateFlags, value)
}

// emitFlagsSlot writes the state-flags code only if the flags actually changed from this point's
// previous flags; otherwise it defers straight to the mandatory value code.
func (te *Encoder) emitFlagsSlot(nextPoint *pointMetadata, stateFlags uint32, value float32) error {
	if stateFlags != nextPoint.PrevStateFlags1 {
		if err := te.encodeStateFlags(nextPoint, stateFlags); err != nil {
			return err
		}
	}

	return te.encodeValue(nextPoint, value)
}

func (te *Encoder) encodePointID(id, predicted int32) error {
	xor := uint32(id) ^ uint32(predicted)

	switch {
	case xor>>4 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor4)); err != nil {
			return err
		}

		te.writeBits(int32(xor), 4)
	case xor>>8 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor8)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
	case xor>>12 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor12)); err != nil {
			return err
		}

		te.writeBits(int32(xor&0xF), 4)
		te.writeByte(byte(xor >> 4))
	case xor>>16 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor16)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
		te.writeByte(byte(xor >> 8))
	case xor>>20 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor20)); err != nil {
			return err
		}

		te.writeBits(int32(xor&0xF), 4)
		te.writeByte(byte(xor >> 4))
		te.writeByte(byte(xor >> 12))
	case xor>>24 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor24)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
		te.writeByte(byte(xor >> 8))
		te.writeByte(byte(xor >> 16))
	default:
		if err := te.lastPoint.WriteCode(int32(codeWords.PointIDXor32)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
		te.writeByte(byte(xor >> 8))
		te.writeByte(byte(xor >> 16))
		te.writeByte(byte(xor >> 24))
	}

	return nil
}

//gocyclo:ignore
func (te *Encoder) encodeTimestamp(timestamp int64) error {
	var code byte

	switch {
	case timestamp == te.prevTimestamp1+te.prevTimeDelta1:
		code = codeWords.TimeDelta1Forward
	case timestamp == te.prevTimestamp1+te.prevTimeDelta2:
		code = codeWords.TimeDelta2Forward
	case timestamp == te.prevTimestamp1+te.prevTimeDelta3:
		code = codeWords.TimeDelta3Forward
	case timestamp == te.prevTimestamp1+te.prevTimeDelta4:
		code = codeWords.TimeDelta4Forward
	case timestamp == te.prevTimestamp1-te.prevTimeDelta1:
		code = codeWords.TimeDelta1Reverse
	case timestamp == te.prevTimestamp1-te.prevTimeDelta2:
		code = codeWords.TimeDelta2Reverse
	case timestamp == te.prevTimestamp1-te.prevTimeDelta3:
		code = codeWords.TimeDelta3Reverse
	case timestamp == te.prevTimestamp1-te.prevTimeDelta4:
		code = codeWords.TimeDelta4Reverse
	case timestamp == te.prevTimestamp2:
		code = codeWords.Timestamp2
	default:
		code = codeWords.TimeXor7Bit
	}

	if err := te.lastPoint.WriteCode(int32(code)); err != nil {
		return err
	}

	if code == codeWords.TimeXor7Bit {
		encode7BitUInt64(te.data, &te.position, uint64(te.prevTimestamp1^timestamp))
	}

	te.updateTimeDeltas(timestamp)

	return nil
}

func (te *Encoder) updateTimeDeltas(timestamp int64) {
	minDelta := abs(te.prevTimestamp1 - timestamp)

	if minDelta < te.prevTimeDelta4 && minDelta != te.prevTimeDelta1 && minDelta != te.prevTimeDelta2 && minDelta != te.prevTimeDelta3 {
		switch {
		case minDelta < te.prevTimeDelta1:
			te.prevTimeDelta4 = te.prevTimeDelta3
			te.prevTimeDelta3 = te.prevTimeDelta2
			te.prevTimeDelta2 = te.prevTimeDelta1
			te.prevTimeDelta1 = minDelta
		case minDelta < te.prevTimeDelta2:
			te.prevTimeDelta4 = te.prevTimeDelta3
			te.prevTimeDelta3 = te.prevTimeDelta2
			te.prevTimeDelta2 = minDelta
		case minDelta < te.prevTimeDelta3:
			te.prevTimeDelta4 = te.prevTimeDelta3
			te.prevTimeDelta3 = minDelta
		default:
			te.prevTimeDelta4 = minDelta
		}
	}

	te.prevTimestamp2 = te.prevTimestamp1
	te.prevTimestamp1 = timestamp
}

func (te *Encoder) encodeStateFlags(nextPoint *pointMetadata, stateFlags uint32) error {
	var code byte

	if stateFlags == nextPoint.PrevStateFlags2 {
		code = codeWords.StateFlags2
	} else {
		code = codeWords.StateFlags7Bit32
	}

	if err := te.lastPoint.WriteCode(int32(code)); err != nil {
		return err
	}

	if code == codeWords.StateFlags7Bit32 {
		encode7BitUInt32(te.data, &te.position, stateFlags)
	}

	nextPoint.PrevStateFlags2 = nextPoint.PrevStateFlags1
	nextPoint.PrevStateFlags1 = stateFlags

	return nil
}

// encodeValue writes the code for value against nextPoint's three-deep value history. Value1 needs
// no history shift, Value2 shifts only itself and PrevValue1 forward (PrevValue3 is left untouched),
// and every other case shifts all three slots; decodeValue mirrors this exactly so the two sides'
// history stays in lockstep.
func (te *Encoder) encodeValue(nextPoint *pointMetadata, value float32) error {
	valueRaw := math.Float32bits(value)

	switch {
	case valueRaw == nextPoint.PrevValue1:
		return te.lastPoint.WriteCode(int32(codeWords.Value1))
	case valueRaw == nextPoint.PrevValue2:
		if err := te.lastPoint.WriteCode(int32(codeWords.Value2)); err != nil {
			return err
		}

		nextPoint.PrevValue2 = nextPoint.PrevValue1
		nextPoint.PrevValue1 = valueRaw

		return nil
	case valueRaw == nextPoint.PrevValue3:
		if err := te.lastPoint.WriteCode(int32(codeWords.Value3)); err != nil {
			return err
		}
	case valueRaw == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueZero)); err != nil {
			return err
		}
	default:
		if err := te.encodeValueXor(nextPoint.PrevValue1, valueRaw); err != nil {
			return err
		}
	}

	nextPoint.PrevValue3 = nextPoint.PrevValue2
	nextPoint.PrevValue2 = nextPoint.PrevValue1
	nextPoint.PrevValue1 = valueRaw

	return nil
}

//gocyclo:ignore
func (te *Encoder) encodeValueXor(prevValue1, valueRaw uint32) error {
	xor := valueRaw ^ prevValue1

	switch {
	case xor>>4 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor4)); err != nil {
			return err
		}

		te.writeBits(int32(xor), 4)
	case xor>>8 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor8)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
	case xor>>12 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor12)); err != nil {
			return err
		}

		te.writeBits(int32(xor&0xF), 4)
		te.writeByte(byte(xor >> 4))
	case xor>>16 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor16)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
		te.writeByte(byte(xor >> 8))
	case xor>>20 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor20)); err != nil {
			return err
		}

		te.writeBits(int32(xor&0xF), 4)
		te.writeByte(byte(xor >> 4))
		te.writeByte(byte(xor >> 12))
	case xor>>24 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor24)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
		te.writeByte(byte(xor >> 8))
		te.writeByte(byte(xor >> 16))
	case xor>>28 == 0:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor28)); err != nil {
			return err
		}

		te.writeBits(int32(xor&0xF), 4)
		te.writeByte(byte(xor >> 4))
		te.writeByte(byte(xor >> 12))
		te.writeByte(byte(xor >> 20))
	default:
		if err := te.lastPoint.WriteCode(int32(codeWords.ValueXor32)); err != nil {
			return err
		}

		te.writeByte(byte(xor))
		te.writeByte(byte(xor >> 8))
		te.writeByte(byte(xor >> 16))
		te.writeByte(byte(xor >> 24))
	}

	return nil
}

// writeBit pushes a single bit into the bit cache, claiming the next buffer byte the moment a fresh
// cache starts filling so that writeByte below can always safely target the immediately following
// slot regardless of how many bits are still pending, mirroring the decoder's identical invariant.
func (te *Encoder) writeBit(bit int32) {
	if te.bitStreamCount == 0 {
		te.pendingBytePos = te.position
		te.position++
	}

	te.bitStreamCache = te.bitStreamCache<<1 | (bit & 1)
	te.bitStreamCount++

	if te.bitStreamCount == 8 {
		te.data[te.pendingBytePos] = byte(te.bitStreamCache)
		te.clearBitStream()
	}
}

// writeBits writes the low bitCount bits of code, most-significant bit first, matching the bit
// order TryGetMeasurement's readBit/readBits5 reconstruct.
func (te *Encoder) writeBits(code int32, bitCount int32) {
	for i := bitCount - 1; i >= 0; i-- {
		te.writeBit((code >> uint(i)) & 1)
	}
}

// writeByte appends one byte directly to the working buffer at the next unreserved slot, matching
// Decoder's direct td.data[td.position] reads for the non-bit-packed portions of wide XOR codes.
func (te *Encoder) writeByte(b byte) {
	te.data[te.position] = b
	te.position++
}

func encode7BitUInt32(stream []byte, position *int, value uint32) {
	if value < 128 {
		stream[*position] = byte(value)
		*position++
		return
	}

	stream[*position] = byte(value | 0x80)
	*position++
	value >>= 7

	if value < 128 {
		stream[*position] = byte(value)
		*position++
		return
	}

	stream[*position] = byte(value | 0x80)
	*position++
	value >>= 7

	if value < 128 {
		stream[*position] = byte(value)
		*position++
		return
	}

	stream[*position] = byte(value | 0x80)
	*position++
	value >>= 7

	if value < 128 {
		stream[*position] = byte(value)
		*position++
		return
	}

	stream[*position] = byte(value | 0x80)
	*position++
	value >>= 7

	stream[*position] = byte(value)
	*position++
}

func encode7BitUInt64(stream []byte, position *int, value uint64) {
	for i := 0; i < 8; i++ {
		if value < 128 {
			stream[*position] = byte(value)
			*position++
			return
		}

		stream[*position] = byte(value | 0x80)
		*position++
		value >>= 7
	}

	stream[*position] = byte(value)
	*position++
}
