//******************************************************************************************************
//  CompactMeasurement.go - Gbtc
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
//  09/13/2021 - J. Ritchie Carroll
//       Generated original version of source code.
//  07/31/2026 - Narrowed the wire signal index to 16 bits and added the DoubleValue flag, which carries
//       a measurement value at full float64 precision instead of the lossy float32 default.
//
//******************************************************************************************************

package transport

import (
	"errors"

	"github.com/gridstream/sttp/bytecodec"
	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/stateflags"
	"github.com/gridstream/sttp/ticks"
)

type compactStateFlagsEnum byte

// compactStateFlags constants represent each flag in the 8-bit compact measurement state flags.
var compactStateFlags = struct {
	DataRange       compactStateFlagsEnum
	DataQuality     compactStateFlagsEnum
	TimeQuality     compactStateFlagsEnum
	SystemIssue     compactStateFlagsEnum
	CalculatedValue compactStateFlagsEnum
	DiscardedValue  compactStateFlagsEnum
	BaseTimeOffset  compactStateFlagsEnum
	TimeIndex       compactStateFlagsEnum
}{
	DataRange:       0x01,
	DataQuality:     0x02,
	TimeQuality:     0x04,
	SystemIssue:     0x08,
	CalculatedValue: 0x10,
	DiscardedValue:  0x20,
	BaseTimeOffset:  0x40,
	TimeIndex:       0x80,
}

const (
	// These constants are masks used to set flags within the full 32-bit measurement state flags.
	dataRangeMask       stateflags.StateFlags = 0x000000FC
	dataQualityMask     stateflags.StateFlags = 0x0000EF03
	timeQualityMask     stateflags.StateFlags = 0x00BF0000
	systemIssueMask     stateflags.StateFlags = 0xE0000000
	calculatedValueMask stateflags.StateFlags = 0x00001000
	discardedValueMask  stateflags.StateFlags = 0x00400000
)

func (compactFlags compactStateFlagsEnum) mapToFullFlags() stateflags.StateFlags {
	var fullFlags stateflags.StateFlags

	if (compactFlags & compactStateFlags.DataRange) > 0 {
		fullFlags |= dataRangeMask
	}

	if (compactFlags & compactStateFlags.DataQuality) > 0 {
		fullFlags |= dataQualityMask
	}

	if (compactFlags & compactStateFlags.TimeQuality) > 0 {
		fullFlags |= timeQualityMask
	}

	if (compactFlags & compactStateFlags.SystemIssue) > 0 {
		fullFlags |= systemIssueMask
	}

	if (compactFlags & compactStateFlags.CalculatedValue) > 0 {
		fullFlags |= calculatedValueMask
	}

	if (compactFlags & compactStateFlags.DiscardedValue) > 0 {
		fullFlags |= discardedValueMask
	}

	return fullFlags
}

func mapToCompactFlags(fullFlags stateflags.StateFlags) compactStateFlagsEnum {
	var compactFlags compactStateFlagsEnum

	if (fullFlags & dataRangeMask) > 0 {
		compactFlags |= compactStateFlags.DataRange
	}

	if (fullFlags & dataQualityMask) > 0 {
		compactFlags |= compactStateFlags.DataQuality
	}

	if (fullFlags & timeQualityMask) > 0 {
		compactFlags |= compactStateFlags.TimeQuality
	}

	if (fullFlags & systemIssueMask) > 0 {
		compactFlags |= compactStateFlags.SystemIssue
	}

	if (fullFlags & calculatedValueMask) > 0 {
		compactFlags |= compactStateFlags.CalculatedValue
	}

	if (fullFlags & discardedValueMask) > 0 {
		compactFlags |= compactStateFlags.DiscardedValue
	}

	return compactFlags
}

// CompactMeasurementFlags defines the second byte of flags carried by a compact measurement, beyond
// the state-flags summary byte; currently only DoubleValue is defined.
type CompactMeasurementFlagsEnum byte

// CompactMeasurementFlags is an enumeration of per-measurement encoding option flags.
var CompactMeasurementFlags = struct {
	// DoubleValue indicates the measurement value follows as a full 8-byte float64 rather than the
	// default lossy-compressed 4-byte float32.
	DoubleValue CompactMeasurementFlagsEnum
}{
	DoubleValue: 0x20,
}

// CompactMeasurement defines a measured value, in simple compact format, for transmission or
// reception in STTP.
type CompactMeasurement struct {
	Value       float64
	Timestamp   ticks.Ticks
	SignalIndex uint16
	Flags       compactStateFlagsEnum
	Options     CompactMeasurementFlagsEnum
}

// NewCompactMeasurement constructs a CompactMeasurement from the specified byte buffer; returns the
// measurement and the number of bytes occupied by this measurement within buffer.
//
// Basic compact measurement wire format:
//
//	Field:       Bytes:
//	--------     -------
//	 Flags          1
//	 Options        1
//	 SignalIndex    2
//	 Value         4/8
//	 [Time]       0/2/4/8
func NewCompactMeasurement(includeTime, useMillisecondResolution bool, baseTimeOffsets *[2]int64, buffer []byte) (CompactMeasurement, int, error) {
	var cm CompactMeasurement

	if len(buffer) < 4 {
		return cm, 0, errors.New("not enough buffer available to deserialize compact measurement")
	}

	cm.Flags = compactStateFlagsEnum(buffer[0])
	cm.Options = CompactMeasurementFlagsEnum(buffer[1])

	signalIndex, err := bytecodec.UInt16(buffer[2:4])

	if err != nil {
		return cm, 0, err
	}

	cm.SignalIndex = signalIndex

	valueSize := 4
	offset := 4

	if cm.Options&CompactMeasurementFlags.DoubleValue != 0 {
		valueSize = 8
	}

	if len(buffer) < offset+valueSize {
		return cm, 0, errors.New("not enough buffer available to deserialize compact measurement value")
	}

	if valueSize == 8 {
		value, _ := bytecodec.Float64(buffer[offset:])
		cm.Value = value
	} else {
		value, _ := bytecodec.Float32(buffer[offset:])
		cm.Value = float64(value)
	}

	offset += valueSize

	if !includeTime {
		return cm, offset, nil
	}

	if (cm.Flags & compactStateFlags.BaseTimeOffset) != 0 {
		timeIndex := (cm.Flags & compactStateFlags.TimeIndex) >> 7
		baseTimeOffset := baseTimeOffsets[timeIndex]

		if useMillisecondResolution {
			offsetValue, err := bytecodec.UInt16(buffer[offset:])

			if err != nil {
				return cm, 0, err
			}

			if baseTimeOffset > 0 {
				cm.Timestamp = ticks.Ticks(baseTimeOffset + int64(offsetValue)*int64(ticks.PerMillisecond))
			}

			return cm, offset + 2, nil
		}

		offsetValue, err := bytecodec.UInt32(buffer[offset:])

		if err != nil {
			return cm, 0, err
		}

		if baseTimeOffset > 0 {
			cm.Timestamp = ticks.Ticks(baseTimeOffset + int64(offsetValue))
		}

		return cm, offset + 4, nil
	}

	// Decode 8-byte full fidelity timestamp; only a full fidelity timestamp can carry leap second flags.
	fullTime, err := bytecodec.UInt64(buffer[offset:])

	if err != nil {
		return cm, 0, err
	}

	cm.Timestamp = ticks.Ticks(fullTime)

	return cm, offset + 8, nil
}

// Expand computes the full measurement from the compact representation, resolving SignalIndex
// against the signal index cache that was installed when the measurement was received.
func (cm *CompactMeasurement) Expand(signalIndexCache *SignalIndexCache) measurement.Measurement {
	return measurement.Measurement{
		SignalID:  signalIndexCache.SignalID(cm.SignalIndex),
		Timestamp: cm.Timestamp,
		Value:     cm.Value,
		Flags:     cm.Flags.mapToFullFlags(),
	}
}

// MarshalSize returns the number of bytes Marshal will write for this measurement; it does not
// include the timestamp field, which TimeSize/MarshalTime account for separately.
func (cm *CompactMeasurement) MarshalSize() int {
	if cm.Options&CompactMeasurementFlags.DoubleValue != 0 {
		return 12
	}

	return 8
}

// Marshal serializes a CompactMeasurement, not including its timestamp, to a byte buffer for
// publication to a subscriber. b must have at least MarshalSize bytes available.
func (cm *CompactMeasurement) Marshal(b []byte) {
	b[0] = byte(cm.Flags)
	b[1] = byte(cm.Options)
	bytecodec.PutUInt16(b[2:4], cm.SignalIndex)

	if cm.Options&CompactMeasurementFlags.DoubleValue != 0 {
		bytecodec.PutFloat64(b[4:12], cm.Value)
		return
	}

	bytecodec.PutFloat32(b[4:8], float32(cm.Value))
}

// SetBaseTimeOffsetFlags marks the measurement's timestamp as relative to base time index timeIndex
// (0 or 1) rather than a full 8-byte tick value, for use by a publisher encoding with
// UseBaseTimeOffsets enabled.
func (cm *CompactMeasurement) SetBaseTimeOffsetFlags(timeIndex int) {
	cm.Flags |= compactStateFlags.BaseTimeOffset

	if timeIndex != 0 {
		cm.Flags |= compactStateFlags.TimeIndex
	} else {
		cm.Flags &^= compactStateFlags.TimeIndex
	}
}

// TimeSize returns the number of bytes MarshalTime will write for cm, mirroring the time-field
// width rules NewCompactMeasurement decodes by.
func (cm *CompactMeasurement) TimeSize(useMillisecondResolution bool) int {
	if cm.Flags&compactStateFlags.BaseTimeOffset == 0 {
		return 8
	}

	if useMillisecondResolution {
		return 2
	}

	return 4
}

// MarshalTime appends the timestamp portion of the compact measurement wire format, honoring
// whatever BaseTimeOffset/TimeIndex flags SetBaseTimeOffsetFlags already set on cm, or writing a
// full 8-byte tick value if it was never called. b must have at least cm.TimeSize(...) bytes
// available. Returns the number of bytes written.
func (cm *CompactMeasurement) MarshalTime(b []byte, useMillisecondResolution bool, baseTimeOffsets *[2]int64) int {
	if cm.Flags&compactStateFlags.BaseTimeOffset == 0 {
		bytecodec.PutUInt64(b[0:8], uint64(cm.Timestamp))
		return 8
	}

	timeIndex := 0

	if cm.Flags&compactStateFlags.TimeIndex != 0 {
		timeIndex = 1
	}

	offset := int64(cm.Timestamp) - baseTimeOffsets[timeIndex]

	if useMillisecondResolution {
		bytecodec.PutUInt16(b[0:2], uint16(offset/int64(ticks.PerMillisecond)))
		return 2
	}

	bytecodec.PutUInt32(b[0:4], uint32(offset))
	return 4
}

// NewCompactFlags derives the compact wire flags (summary state-flags byte plus options byte) for a
// measurement value about to be serialized. useFullPrecision requests the DoubleValue option when the
// value cannot round-trip through float32 without meaningful loss.
func NewCompactFlags(flags stateflags.StateFlags, useFullPrecision bool) (compactStateFlagsEnum, CompactMeasurementFlagsEnum) {
	compact := mapToCompactFlags(flags)

	var options CompactMeasurementFlagsEnum

	if useFullPrecision {
		options |= CompactMeasurementFlags.DoubleValue
	}

	return compact, options
}

// LossyRoundTrip reports whether converting value to float32 and back would change it, which callers
// use to decide whether to request the DoubleValue encoding option for a given sample.
func LossyRoundTrip(value float64) bool {
	return float64(float32(value)) != value
}
