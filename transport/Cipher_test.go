//******************************************************************************************************
//  Cipher_test.go - Gbtc
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

import "testing"

func TestCipherEncryptDecryptRoundTrip(t *testing.T) {
	table, err := NewCipherKeyTable()

	if err != nil {
		t.Fatalf("TestCipherEncryptDecryptRoundTrip: unexpected error creating table: %v", err)
	}

	pair := table.ActivePair()
	plaintext := []byte("a data packet payload that isn't block aligned")

	ciphertext, err := EncryptPayload(pair, plaintext)

	if err != nil {
		t.Fatalf("TestCipherEncryptDecryptRoundTrip: unexpected encrypt error: %v", err)
	}

	decrypted, err := DecryptPayload(pair, ciphertext)

	if err != nil {
		t.Fatalf("TestCipherEncryptDecryptRoundTrip: unexpected decrypt error: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Fatalf("TestCipherEncryptDecryptRoundTrip: expected round trip, got %q", decrypted)
	}
}

// TestCipherRotationGraceWindow verifies the receiver-side grace window required by spec: a payload
// encrypted under the pre-rotation active pair still decrypts correctly using its now-inactive slot
// after Rotate flips the selector to the other slot.
func TestCipherRotationGraceWindow(t *testing.T) {
	table, err := NewCipherKeyTable()

	if err != nil {
		t.Fatalf("TestCipherRotationGraceWindow: unexpected error creating table: %v", err)
	}

	priorIndex := table.ActiveIndex()
	priorPair := table.ActivePair()

	plaintext := []byte("in-flight packet encrypted before rotation")
	ciphertext, err := EncryptPayload(priorPair, plaintext)

	if err != nil {
		t.Fatalf("TestCipherRotationGraceWindow: unexpected encrypt error: %v", err)
	}

	newIndex, _, err := table.Rotate()

	if err != nil {
		t.Fatalf("TestCipherRotationGraceWindow: unexpected rotate error: %v", err)
	}

	if newIndex == priorIndex {
		t.Fatalf("TestCipherRotationGraceWindow: expected rotation to flip the active slot")
	}

	// The prior pair must still be retrievable from its slot for in-flight packets.
	stillValidPair := table.Pair(priorIndex)

	decrypted, err := DecryptPayload(stillValidPair, ciphertext)

	if err != nil {
		t.Fatalf("TestCipherRotationGraceWindow: unexpected decrypt error during grace window: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Fatalf("TestCipherRotationGraceWindow: expected in-flight packet to still decrypt during grace window")
	}
}

func TestCipherKeyTableRotateChangesKeyMaterial(t *testing.T) {
	table, err := NewCipherKeyTable()

	if err != nil {
		t.Fatalf("TestCipherKeyTableRotateChangesKeyMaterial: unexpected error creating table: %v", err)
	}

	inactiveIndex := (table.ActiveIndex() + 1) % cipherKeyTableSize
	before := table.Pair(inactiveIndex)

	newIndex, newPair, err := table.Rotate()

	if err != nil {
		t.Fatalf("TestCipherKeyTableRotateChangesKeyMaterial: unexpected rotate error: %v", err)
	}

	if newIndex != inactiveIndex {
		t.Fatalf("TestCipherKeyTableRotateChangesKeyMaterial: expected rotation to activate the previously inactive slot")
	}

	if string(newPair.Key) == string(before.Key) {
		t.Fatalf("TestCipherKeyTableRotateChangesKeyMaterial: expected fresh key material after rotation")
	}
}
