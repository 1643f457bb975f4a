//******************************************************************************************************
//  Key_test.go - Gbtc
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

package measurement

import (
	"testing"

	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/measurement/signalkind"
)

func TestInternKeyIdentity(t *testing.T) {
	id := guid.New()

	k1 := InternKey(id, "TEST", 42)
	k2 := InternKey(id, "TEST", 42)

	if k1 != k2 {
		t.Fatalf("TestInternKeyIdentity: expected same InternedKey instance for repeated InternKey calls")
	}

	if Lookup(id) != k1 {
		t.Fatalf("TestInternKeyIdentity: Lookup did not return the interned key")
	}

	if LookupBySource("TEST", 42) != k1 {
		t.Fatalf("TestInternKeyIdentity: LookupBySource did not return the interned key")
	}
}

func TestInternKeyBySourceOnly(t *testing.T) {
	id1 := guid.New()
	id2 := guid.New()

	k1 := InternKey(id1, "DUPSRC", 7)
	k2 := InternKey(id2, "DUPSRC", 7)

	if k1 != k2 {
		t.Fatalf("TestInternKeyBySourceOnly: expected (source, id) identity to win when distinct signal IDs collide on source")
	}
}

func TestAdjustedValue(t *testing.T) {
	id := guid.New()
	key := InternKey(id, "ADJ", 1)

	key.Update(&Metadata{Adder: 10, Multiplier: 2})

	m := Measurement{SignalID: id, Value: 5}

	if got := m.AdjustedValue(key); got != 20 {
		t.Fatalf("TestAdjustedValue: expected 20, got %f", got)
	}
}

func TestUndefinedKey(t *testing.T) {
	if Undefined.Source != UndefinedSource {
		t.Fatalf("TestUndefinedKey: unexpected undefined source %q", Undefined.Source)
	}

	found := Lookup(Undefined.SignalID)

	if found == nil || found.Key != Undefined {
		t.Fatalf("TestUndefinedKey: sentinel key was not pre-registered in the intern table")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	id := guid.New()

	registry.Add(id, "REG", 1, &Metadata{Tag: "Test Tag"})

	key := registry.Get(id)

	if key == nil {
		t.Fatalf("TestRegistry: expected registered key to be retrievable")
	}

	if key.Metadata().Tag != "Test Tag" {
		t.Fatalf("TestRegistry: expected metadata tag to round trip")
	}

	if registry.Count() != 1 {
		t.Fatalf("TestRegistry: expected count 1, got %d", registry.Count())
	}

	registry.Clear()

	if registry.Count() != 0 {
		t.Fatalf("TestRegistry: expected count 0 after Clear, got %d", registry.Count())
	}
}

func TestParseSignalReference(t *testing.T) {
	source, kind, position := ParseSignalReference("SHELBY-PA1")

	if source != "SHELBY" {
		t.Fatalf("TestParseSignalReference: expected source SHELBY, got %q", source)
	}

	if kind != signalkind.Angle {
		t.Fatalf("TestParseSignalReference: expected Angle signal kind, got %v", kind)
	}

	if position != 1 {
		t.Fatalf("TestParseSignalReference: expected position 1, got %d", position)
	}
}
