//******************************************************************************************************
//  Cipher.go - Gbtc
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
//  09/16/2021 - J. Ritchie Carroll
//       Generated original version of decipherAES in Common.go.
//  07/31/2026 - Added the encrypt half, the even/odd key table, and the rotation scheduler described
//       by spec.md's cipher engine section; moved out of Common.go into its own file since the cipher
//       engine is now a first-class component shared by publisher and subscriber.
//
//******************************************************************************************************

package transport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"sync/atomic"
)

// CipherKeyPair is one AES key/IV pair used to encrypt or decrypt data packet payloads.
type CipherKeyPair struct {
	Key []byte
	IV  []byte
}

// cipherKeyTableSize is always 2: the even and odd slots selected by DataPacketFlags.CipherIndex.
const cipherKeyTableSize = 2

// CipherKeyTable holds the even/odd CipherKeyPair slots for a session and the currently active
// slot selector, installed and rotated under atomic pointer-swap semantics per spec's shared-resource
// policy: reads during installation see either the old or new table, never a mix, and the active
// selector is updated only after the new pair is in place.
type CipherKeyTable struct {
	pairs  atomic.Pointer[[cipherKeyTableSize]CipherKeyPair]
	active atomic.Uint32
}

// NewCipherKeyTable generates a fresh random key/IV pair in both slots and returns the table with
// slot 0 (even) active.
func NewCipherKeyTable() (*CipherKeyTable, error) {
	table := &CipherKeyTable{}

	pairs, err := newRandomKeyPairs()

	if err != nil {
		return nil, err
	}

	table.pairs.Store(pairs)

	return table, nil
}

func newRandomKeyPairs() (*[cipherKeyTableSize]CipherKeyPair, error) {
	var pairs [cipherKeyTableSize]CipherKeyPair

	for i := range pairs {
		key := make([]byte, 32) // AES-256
		iv := make([]byte, aes.BlockSize)

		if _, err := rand.Read(key); err != nil {
			return nil, err
		}

		if _, err := rand.Read(iv); err != nil {
			return nil, err
		}

		pairs[i] = CipherKeyPair{Key: key, IV: iv}
	}

	return &pairs, nil
}

// ActiveIndex returns which slot, 0 (even) or 1 (odd), is currently selected for new encryptions.
func (t *CipherKeyTable) ActiveIndex() uint32 {
	return t.active.Load()
}

// Pair returns the CipherKeyPair installed in the given slot (0 or 1).
func (t *CipherKeyTable) Pair(index uint32) CipherKeyPair {
	pairs := t.pairs.Load()
	return pairs[index%cipherKeyTableSize]
}

// ActivePair returns the CipherKeyPair currently selected for new encryptions.
func (t *CipherKeyTable) ActivePair() CipherKeyPair {
	return t.Pair(t.ActiveIndex())
}

// Rotate generates a fresh key/IV pair into the currently inactive slot, then flips the active
// selector to that slot, returning the newly active index and pair for UpdateCipherKeys publication.
// The receiver-side grace window (spec §4.8: accept either pair across a rotation period) falls out
// naturally because the previously-active pair remains readable in its slot until the next rotation
// overwrites it.
func (t *CipherKeyTable) Rotate() (uint32, CipherKeyPair, error) {
	current := t.pairs.Load()
	nextActive := (t.active.Load() + 1) % cipherKeyTableSize

	updated := *current
	key := make([]byte, 32)
	iv := make([]byte, aes.BlockSize)

	if _, err := rand.Read(key); err != nil {
		return 0, CipherKeyPair{}, err
	}

	if _, err := rand.Read(iv); err != nil {
		return 0, CipherKeyPair{}, err
	}

	updated[nextActive] = CipherKeyPair{Key: key, IV: iv}

	t.pairs.Store(&updated)
	t.active.Store(nextActive)

	return nextActive, updated[nextActive], nil
}

// ErrShortCiphertext is returned when an encrypted payload is not a multiple of the AES block size.
var ErrShortCiphertext = errors.New("transport: ciphertext is not a multiple of the AES block size")

// decipherAES decrypts an AES-CBC ciphertext with the given key and IV.
func decipherAES(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)

	if err != nil {
		return nil, err
	}

	if len(data)%aes.BlockSize != 0 {
		return nil, ErrShortCiphertext
	}

	mode := cipher.NewCBCDecrypter(block, iv)
	out := make([]byte, len(data))
	mode.CryptBlocks(out, data)

	return out, nil
}

// encipherAES encrypts data under AES-CBC with the given key and IV, PKCS#7-padding data to a
// multiple of the AES block size first.
func encipherAES(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)

	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(data, aes.BlockSize)
	out := make([]byte, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out, padded)

	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLength := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLength)
	copy(padded, data)

	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLength)
	}

	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("transport: cannot unpad empty ciphertext")
	}

	padLength := int(data[len(data)-1])

	if padLength == 0 || padLength > len(data) {
		return nil, errors.New("transport: invalid PKCS#7 padding")
	}

	return data[:len(data)-padLength], nil
}

// DecryptPayload decrypts a data packet payload that was encrypted under the given CipherKeyPair.
func DecryptPayload(pair CipherKeyPair, data []byte) ([]byte, error) {
	decrypted, err := decipherAES(pair.Key, pair.IV, data)

	if err != nil {
		return nil, err
	}

	return pkcs7Unpad(decrypted)
}

// EncryptPayload encrypts a data packet payload under the given CipherKeyPair.
func EncryptPayload(pair CipherKeyPair, data []byte) ([]byte, error) {
	return encipherAES(pair.Key, pair.IV, data)
}
