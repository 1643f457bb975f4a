//******************************************************************************************************
//  Tssc_test.go - Gbtc
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

package tssc

import "testing"

type tsscSample struct {
	id         int32
	timestamp  int64
	stateFlags uint32
	value      float32
}

func encodeAllSamples(t *testing.T, samples []tsscSample) []byte {
	t.Helper()

	buffer := make([]byte, 64*1024)
	encoder := NewEncoder(256)
	encoder.SetBuffer(buffer)

	for i, sample := range samples {
		ok, err := encoder.TryAddMeasurement(sample.id, sample.timestamp, sample.stateFlags, sample.value)

		if err != nil {
			t.Fatalf("encodeAllSamples: unexpected error adding sample %d: %v", i, err)
		}

		if !ok {
			t.Fatalf("encodeAllSamples: buffer unexpectedly full at sample %d", i)
		}
	}

	length, err := encoder.FinishBlock()

	if err != nil {
		t.Fatalf("encodeAllSamples: unexpected error finishing block: %v", err)
	}

	return buffer[:length]
}

func decodeAllSamples(t *testing.T, data []byte) []tsscSample {
	t.Helper()

	decoder := NewDecoder(256)
	decoder.SetBuffer(data)

	var decoded []tsscSample

	for {
		var id int32
		var timestamp int64
		var stateFlags uint32
		var value float32

		ok, err := decoder.TryGetMeasurement(&id, &timestamp, &stateFlags, &value)

		if err != nil {
			t.Fatalf("decodeAllSamples: unexpected error decoding sample %d: %v", len(decoded), err)
		}

		if !ok {
			break
		}

		decoded = append(decoded, tsscSample{id: id, timestamp: timestamp, stateFlags: stateFlags, value: value})
	}

	return decoded
}

func assertSamplesEqual(t *testing.T, want, got []tsscSample) {
	t.Helper()

	if len(want) != len(got) {
		t.Fatalf("assertSamplesEqual: expected %d samples, got %d", len(want), len(got))
	}

	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("assertSamplesEqual: sample %d mismatch: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

// TestEncoderDecoderRoundTripRepeatedValue exercises the maximal-compression path: the same signal
// repeating an identical value, timestamp delta, and state flags so every measurement after the first
// collapses to a single Value1 code.
func TestEncoderDecoderRoundTripRepeatedValue(t *testing.T) {
	var samples []tsscSample
	baseTime := int64(638500000000000000)

	for i := 0; i < 50; i++ {
		samples = append(samples, tsscSample{id: 7, timestamp: baseTime + int64(i)*10000, stateFlags: 0, value: 60.0})
	}

	encoded := encodeAllSamples(t, samples)
	decoded := decodeAllSamples(t, encoded)

	assertSamplesEqual(t, samples, decoded)
}

// TestEncoderDecoderRoundTripVaryingValues exercises the XOR-coded value path across a range of
// magnitudes, forcing different ValueXor widths to be selected from measurement to measurement.
func TestEncoderDecoderRoundTripVaryingValues(t *testing.T) {
	var samples []tsscSample
	baseTime := int64(638500000000000000)
	values := []float32{60.0, 60.01, 59.98, 1e6, -1e6, 0, 120.5, -0.0001, 3.14159, 1000000.25}

	for i, value := range values {
		samples = append(samples, tsscSample{
			id:         11,
			timestamp:  baseTime + int64(i)*16667,
			stateFlags: uint32(i % 3),
			value:      value,
		})
	}

	encoded := encodeAllSamples(t, samples)
	decoded := decodeAllSamples(t, encoded)

	assertSamplesEqual(t, samples, decoded)
}

// TestEncoderDecoderRoundTripMultipleSignals interleaves several signal IDs, exercising the point-ID
// XOR coding path and confirming each signal's delta history is tracked independently.
func TestEncoderDecoderRoundTripMultipleSignals(t *testing.T) {
	var samples []tsscSample
	baseTime := int64(638500000000000000)
	ids := []int32{3, 250, 4, 250, 3, 99999, 4}

	for i, id := range ids {
		samples = append(samples, tsscSample{
			id:         id,
			timestamp:  baseTime + int64(i)*33333,
			stateFlags: 0,
			value:      float32(i) * 1.5,
		})
	}

	encoded := encodeAllSamples(t, samples)
	decoded := decodeAllSamples(t, encoded)

	assertSamplesEqual(t, samples, decoded)
}

// TestEncoderDecoderRoundTripStateFlagChanges exercises the StateFlags2/StateFlags7Bit32 coding path,
// alternating between a repeated flag value (hits the two-deep history) and novel ones (forces the
// 7-bit variable-length fallback).
func TestEncoderDecoderRoundTripStateFlagChanges(t *testing.T) {
	var samples []tsscSample
	baseTime := int64(638500000000000000)
	flags := []uint32{0, 1, 0, 2, 1, 0, 0x12345678, 1}

	for i, flag := range flags {
		samples = append(samples, tsscSample{
			id:         42,
			timestamp:  baseTime + int64(i)*10000,
			stateFlags: flag,
			value:      100.0,
		})
	}

	encoded := encodeAllSamples(t, samples)
	decoded := decodeAllSamples(t, encoded)

	assertSamplesEqual(t, samples, decoded)
}

// TestEncoderTryAddMeasurementStopsAtCapacity verifies the encoder reports a full buffer instead of
// overrunning it, so a publisher can finish the current block and start a fresh one mid-stream.
func TestEncoderTryAddMeasurementStopsAtCapacity(t *testing.T) {
	buffer := make([]byte, minEncoderRoom) // room for roughly one measurement plus EndOfStream
	encoder := NewEncoder(16)
	encoder.SetBuffer(buffer)

	added := 0

	for i := 0; i < 1000; i++ {
		ok, err := encoder.TryAddMeasurement(int32(i), int64(i)*12345, 0, float32(i))

		if err != nil {
			t.Fatalf("TestEncoderTryAddMeasurementStopsAtCapacity: unexpected error: %v", err)
		}

		if !ok {
			break
		}

		added++
	}

	if added == 0 {
		t.Fatalf("TestEncoderTryAddMeasurementStopsAtCapacity: expected at least one measurement to fit")
	}

	if added >= 1000 {
		t.Fatalf("TestEncoderTryAddMeasurementStopsAtCapacity: expected the tiny buffer to fill up")
	}
}

// TestEncoderDecoderAdaptiveModeSwitch pushes enough measurements through the same signal to trigger
// every commandsSentSinceLastChange threshold (5, 20, 100), confirming the adaptive mode transitions
// stay synchronized between encoder and decoder all the way through.
func TestEncoderDecoderAdaptiveModeSwitch(t *testing.T) {
	var samples []tsscSample
	baseTime := int64(638500000000000000)

	for i := 0; i < 150; i++ {
		samples = append(samples, tsscSample{
			id:         1,
			timestamp:  baseTime + int64(i)*10000,
			stateFlags: 0,
			value:      float32(i%7) * 0.5,
		})
	}

	encoded := encodeAllSamples(t, samples)
	decoded := decodeAllSamples(t, encoded)

	assertSamplesEqual(t, samples, decoded)
}
