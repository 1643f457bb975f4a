//******************************************************************************************************
//  Guid_test.go - Gbtc
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

package guid

import "testing"

const gs1 string = "{b4a26a66-a073-44a0-b03b-55d97badef74}"
const gsz string = "{00000000-0000-0000-0000-000000000000}"

func TestGuidParsing(t *testing.T) {
	g1 := Parse(gs1)

	if g1.String() != gs1 {
		t.Fatalf("TestGuidParsing: string generation does not match for " + gs1)
	}

	if Empty.String() != gsz {
		t.Fatalf("TestGuidParsing: string generation does not match for " + gsz)
	}
}

func TestNewGuidRandomness(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if New() == New() {
			t.Fatalf("TestNewGuidRandomness: encountered non-unique Guid after %d generations", i)
		}
	}
}

func TestZeroGuid(t *testing.T) {
	gz := Parse(gsz)
	var zero Guid

	if gz != zero {
		t.Fatalf("TestZeroGuid: parsed zero-value guid not equal to zero guid")
	}

	if !gz.IsZero() {
		t.Fatalf("TestZeroGuid: parsed zero-value guid not reported as zero by IsZero")
	}

	if gz != Empty {
		t.Fatalf("TestZeroGuid: parsed zero-value guid not equal to Empty")
	}
}

func TestGuidToFromBytes(t *testing.T) {
	g1 := Parse(gs1)

	for _, swap := range []bool{false, true} {
		gfb, err := FromBytes(g1.Bytes(), swap)

		if swap {
			// A non-swapped round trip is expected to reproduce the source guid; a swapped
			// round trip on RFC-ordered bytes is expected to produce a different value.
			if err != nil {
				t.Fatalf("TestGuidToFromBytes: FromBytes returned unexpected error: %v", err)
			}

			if gfb == g1 {
				t.Fatalf("TestGuidToFromBytes: swapped FromBytes unexpectedly reproduced guid " + gs1)
			}
			continue
		}

		if err != nil {
			t.Fatalf("TestGuidToFromBytes: FromBytes failed for guid " + gs1)
		}

		if gfb != g1 {
			t.Fatalf("TestGuidToFromBytes: FromBytes round trip mismatch for guid " + gs1)
		}
	}

	if _, err := FromBytes([]byte{0, 0}, false); err == nil {
		t.Fatalf("TestGuidToFromBytes: unexpected success, short slice expected to fail guid parse")
	}
}

func TestHashSet(t *testing.T) {
	g1 := New()
	g2 := New()

	set := NewHashSet([]Guid{g1})

	if !set.Contains(g1) {
		t.Fatalf("TestHashSet: expected set to contain g1")
	}

	if set.Contains(g2) {
		t.Fatalf("TestHashSet: expected set to not contain g2")
	}

	set.Add(g2)

	if !set.Contains(g2) {
		t.Fatalf("TestHashSet: expected set to contain g2 after Add")
	}

	set.Remove(g1)

	if set.Contains(g1) {
		t.Fatalf("TestHashSet: expected set to not contain g1 after Remove")
	}

	if len(set.Slice()) != 1 {
		t.Fatalf("TestHashSet: expected one remaining member, got %d", len(set.Slice()))
	}
}
