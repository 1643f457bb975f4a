//******************************************************************************************************
//  CompactMeasurement_test.go - Gbtc
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

package transport

import (
	"testing"

	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/stateflags"
)

func TestCompactMeasurementMarshalUnmarshalFloat32(t *testing.T) {
	compactFlags, options := NewCompactFlags(stateflags.Normal, false)

	cm := CompactMeasurement{
		Value:       60.0024,
		SignalIndex: 7,
		Flags:       compactFlags,
		Options:     options,
	}

	buf := make([]byte, cm.MarshalSize())
	cm.Marshal(buf)

	decoded, n, err := NewCompactMeasurement(false, false, nil, buf)

	if err != nil {
		t.Fatalf("TestCompactMeasurementMarshalUnmarshalFloat32: unexpected error: %v", err)
	}

	if n != 8 {
		t.Fatalf("TestCompactMeasurementMarshalUnmarshalFloat32: expected 8 bytes consumed, got %d", n)
	}

	if decoded.SignalIndex != 7 {
		t.Fatalf("TestCompactMeasurementMarshalUnmarshalFloat32: expected signal index 7, got %d", decoded.SignalIndex)
	}

	if float32(decoded.Value) != float32(60.0024) {
		t.Fatalf("TestCompactMeasurementMarshalUnmarshalFloat32: expected value to round trip at float32 precision, got %v", decoded.Value)
	}
}

func TestCompactMeasurementDoubleValueOption(t *testing.T) {
	value := 60.00241234567 // not exactly representable as float32

	if !LossyRoundTrip(value) {
		t.Fatalf("TestCompactMeasurementDoubleValueOption: expected fixture value to be lossy at float32 precision")
	}

	compactFlags, options := NewCompactFlags(stateflags.Normal, true)

	cm := CompactMeasurement{
		Value:       value,
		SignalIndex: 3,
		Flags:       compactFlags,
		Options:     options,
	}

	buf := make([]byte, cm.MarshalSize())
	cm.Marshal(buf)

	decoded, n, err := NewCompactMeasurement(false, false, nil, buf)

	if err != nil {
		t.Fatalf("TestCompactMeasurementDoubleValueOption: unexpected error: %v", err)
	}

	if n != 12 {
		t.Fatalf("TestCompactMeasurementDoubleValueOption: expected 12 bytes consumed, got %d", n)
	}

	if decoded.Value != value {
		t.Fatalf("TestCompactMeasurementDoubleValueOption: expected full-precision round trip, got %v", decoded.Value)
	}
}

func TestCompactMeasurementExpand(t *testing.T) {
	signalID := guid.Parse("9861e1f9-0e2b-4719-a2d3-fc40ee5b0866")

	sic := NewSignalIndexCache()
	sic.AddRecord(0, signalID, "SHELBY", 1, 1)

	cm := CompactMeasurement{Value: 59.97, SignalIndex: 0}
	m := cm.Expand(sic)

	if m.SignalID != signalID {
		t.Fatalf("TestCompactMeasurementExpand: expected expanded measurement to resolve signal ID")
	}

	if m.Value != 59.97 {
		t.Fatalf("TestCompactMeasurementExpand: expected value to carry through, got %v", m.Value)
	}
}
