//******************************************************************************************************
//  Measurement.go - Gbtc
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

// Package measurement defines the core value types exchanged between publisher and subscriber: the
// process-wide interned measurement Key, the Measurement sample itself, its ancillary Metadata, and
// the BufferBlock variant used for opaque non-scalar payloads.
package measurement

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/stateflags"
	"github.com/gridstream/sttp/ticks"
)

// Measurement defines a single time-stamped sample flowing through the protocol engine.
type Measurement struct {
	// SignalID is the measurement's globally unique identifier.
	SignalID guid.Guid

	// Value is the instantaneous value of the measurement.
	Value float64

	// Timestamp is the tick-resolution time this measurement was taken.
	Timestamp ticks.Ticks

	// Flags indicates the quality state of the measurement as reported by its source.
	Flags stateflags.StateFlags
}

// TicksValue gets the integer-based time from a Measurement's Ticks-based timestamp, i.e., the
// 62-bit time value excluding the leap-second flag and direction bit.
func (m *Measurement) TicksValue() int64 {
	return int64(m.Timestamp & ticks.ValueMask)
}

// DateTime gets the Measurement's timestamp as a standard Go Time value.
func (m *Measurement) DateTime() time.Time {
	return ticks.ToTime(m.Timestamp)
}

// AdjustedValue applies the Adder/Multiplier of the supplied key's metadata to this measurement's
// raw Value. Callers typically pass the InternedKey resolved from m.SignalID.
func (m *Measurement) AdjustedValue(key *InternedKey) float64 {
	if key == nil {
		return m.Value
	}

	return key.AdjustedValue(m.Value)
}

// String returns the string form of a Measurement value.
func (m *Measurement) String() string {
	return fmt.Sprintf("%s @ %s = %s (%s)",
		m.SignalID.String(),
		m.DateTime().Format("15:04:05.000"),
		strconv.FormatFloat(m.Value, 'f', 3, 64),
		m.Flags.String())
}
