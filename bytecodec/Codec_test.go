//******************************************************************************************************
//  Codec_test.go - Gbtc
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

package bytecodec

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gridstream/sttp/guid"
)

func TestPrimitiveRoundTrips(t *testing.T) {
	buffer := make([]byte, 8)

	PutInt16(buffer, -1234)
	if v, err := Int16(buffer); err != nil || v != -1234 {
		t.Fatalf("TestPrimitiveRoundTrips: Int16 round trip failed, got %d, err %v", v, err)
	}

	PutUInt16(buffer, 54321)
	if v, err := UInt16(buffer); err != nil || v != 54321 {
		t.Fatalf("TestPrimitiveRoundTrips: UInt16 round trip failed, got %d, err %v", v, err)
	}

	PutInt32(buffer, -123456789)
	if v, err := Int32(buffer); err != nil || v != -123456789 {
		t.Fatalf("TestPrimitiveRoundTrips: Int32 round trip failed, got %d, err %v", v, err)
	}

	PutUInt32(buffer, 3000000000)
	if v, err := UInt32(buffer); err != nil || v != 3000000000 {
		t.Fatalf("TestPrimitiveRoundTrips: UInt32 round trip failed, got %d, err %v", v, err)
	}

	PutInt64(buffer, -1234567890123)
	if v, err := Int64(buffer); err != nil || v != -1234567890123 {
		t.Fatalf("TestPrimitiveRoundTrips: Int64 round trip failed, got %d, err %v", v, err)
	}

	PutUInt64(buffer, 18000000000000000000)
	if v, err := UInt64(buffer); err != nil || v != 18000000000000000000 {
		t.Fatalf("TestPrimitiveRoundTrips: UInt64 round trip failed, got %d, err %v", v, err)
	}

	PutFloat32(buffer, 3.14159)
	if v, err := Float32(buffer); err != nil || v != float32(3.14159) {
		t.Fatalf("TestPrimitiveRoundTrips: Float32 round trip failed, got %f, err %v", v, err)
	}

	PutFloat64(buffer, 2.718281828459045)
	if v, err := Float64(buffer); err != nil || v != 2.718281828459045 {
		t.Fatalf("TestPrimitiveRoundTrips: Float64 round trip failed, got %f, err %v", v, err)
	}

	PutBool(buffer, true)
	if v, err := Bool(buffer); err != nil || !v {
		t.Fatalf("TestPrimitiveRoundTrips: Bool round trip failed, got %v, err %v", v, err)
	}
}

func TestShortBufferErrors(t *testing.T) {
	short := make([]byte, 1)

	if _, err := UInt32(short); err != ErrShortBuffer {
		t.Fatalf("TestShortBufferErrors: expected ErrShortBuffer for UInt32")
	}

	if _, err := Float64(short); err != ErrShortBuffer {
		t.Fatalf("TestShortBufferErrors: expected ErrShortBuffer for Float64")
	}

	if _, err := Guid(short); err != ErrShortBuffer {
		t.Fatalf("TestShortBufferErrors: expected ErrShortBuffer for Guid")
	}
}

func TestGuidRoundTrip(t *testing.T) {
	id := guid.New()
	buffer := make([]byte, 16)

	PutGuid(buffer, id)

	decoded, err := Guid(buffer)

	if err != nil {
		t.Fatalf("TestGuidRoundTrip: unexpected error: %v", err)
	}

	if decoded != id {
		t.Fatalf("TestGuidRoundTrip: round trip mismatch")
	}
}

func TestDecimal128RoundTrip(t *testing.T) {
	values := []string{"0", "1.5", "-42.125", "123456789.987654"}
	buffer := make([]byte, Decimal128Size)

	for _, s := range values {
		source, err := decimal.NewFromString(s)

		if err != nil {
			t.Fatalf("TestDecimal128RoundTrip: failed to parse %q: %v", s, err)
		}

		PutDecimal128(buffer, source)

		decoded, err := Decimal128(buffer)

		if err != nil {
			t.Fatalf("TestDecimal128RoundTrip: decode failed for %q: %v", s, err)
		}

		if !decoded.Equal(source) {
			t.Fatalf("TestDecimal128RoundTrip: round trip mismatch for %q, got %s", s, decoded.String())
		}
	}
}
