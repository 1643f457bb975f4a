//******************************************************************************************************
//  SignalIndexCache_test.go - Gbtc
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
)

func TestSignalIndexCacheEncodeDecodeRoundTrip(t *testing.T) {
	codec := NewEncoding(OperationalEncoding.UTF8)

	original := NewSignalIndexCache()
	signalID1 := guid.Parse("9861e1f9-0e2b-4719-a2d3-fc40ee5b0866")
	signalID2 := guid.Parse("5f365923-4a6e-4b4a-8b9b-05b02f9e1c3f")

	original.AddRecord(0, signalID1, "SHELBY", 1, 1)
	original.AddRecord(1, signalID2, "SHELBY", 2, 1)
	original.AddUnauthorized(guid.Parse("00000000-0000-0000-0000-000000000001"))

	subscriberID := guid.Parse("11111111-1111-1111-1111-111111111111")
	encoded := original.Encode(codec, subscriberID)

	decoded, decodedSubscriberID, err := DecodeSignalIndexCache(codec, encoded)

	if err != nil {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: unexpected error: %v", err)
	}

	if decodedSubscriberID != subscriberID {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: subscriber ID mismatch")
	}

	if decoded.Count() != 2 {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: expected 2 records, got %d", decoded.Count())
	}

	if decoded.SignalID(0) != signalID1 {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: expected signal 0 to round trip")
	}

	if decoded.SignalID(1) != signalID2 {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: expected signal 1 to round trip")
	}

	if index, found := decoded.SignalIndex(signalID2); !found || index != 1 {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: expected reverse lookup of signal 1")
	}

	if decoded.MaxSignalIndex() != 1 {
		t.Fatalf("TestSignalIndexCacheEncodeDecodeRoundTrip: expected max signal index 1, got %d", decoded.MaxSignalIndex())
	}
}

func TestSignalIndexCacheClear(t *testing.T) {
	sic := NewSignalIndexCache()
	sic.AddRecord(0, guid.Parse("9861e1f9-0e2b-4719-a2d3-fc40ee5b0866"), "SHELBY", 1, 1)

	sic.Clear()

	if sic.Count() != 0 {
		t.Fatalf("TestSignalIndexCacheClear: expected empty cache after Clear, got %d records", sic.Count())
	}

	if sic.Contains(0) {
		t.Fatalf("TestSignalIndexCacheClear: expected index 0 absent after Clear")
	}
}

func TestSignalIndexCacheUnresolvedLookup(t *testing.T) {
	sic := NewSignalIndexCache()

	if sic.SignalID(42) != guid.Empty {
		t.Fatalf("TestSignalIndexCacheUnresolvedLookup: expected Empty Guid for unknown index")
	}

	if _, _, _, found := sic.Record(42); found {
		t.Fatalf("TestSignalIndexCacheUnresolvedLookup: expected Record to report not found")
	}
}
