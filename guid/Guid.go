//******************************************************************************************************
//  Guid.go - Gbtc
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

// Package guid defines the signal-identity type used throughout the protocol engine: a standard
// RFC-4122 UUID that always serializes in RFC byte order on the wire, regardless of host
// representation, plus conversion helpers for the Microsoft byte-swapped encoding some legacy
// gateways still emit.
package guid

import "github.com/google/uuid"

// Guid is a standard UUID value that can handle alternate wire serialization options.
type Guid uuid.UUID

// Empty is a Guid with a zero value.
var Empty Guid = Guid(uuid.Nil)

// New creates a new random Guid value.
func New() Guid {
	return Guid(uuid.New())
}

// Parse decodes a Guid value from a string.
func Parse(value string) Guid {
	id, err := uuid.Parse(value)

	if err == nil {
		return Guid(id)
	}

	panic("Failed to parse Guid from string \"" + value + "\": " + err.Error())
}

// TryParse decodes a Guid value from a string, returning false instead of panicking when value is
// not a well-formed UUID.
func TryParse(value string) (Guid, bool) {
	id, err := uuid.Parse(value)

	if err != nil {
		return Empty, false
	}

	return Guid(id), true
}

// String returns the string form of a Guid, i.e., {xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx},
// or "" if Guid is invalid.
func (g Guid) String() string {
	image := uuid.UUID(g).String()

	if len(image) > 0 {
		return "{" + image + "}"
	}

	return ""
}

// Bytes returns the 16-byte RFC-4122 big-endian wire representation of the Guid.
func (g Guid) Bytes() []byte {
	id := uuid.UUID(g)
	return id[:]
}

// IsZero returns true if the Guid is the zero value.
func (g Guid) IsZero() bool {
	return g == Empty
}

// FromBytes creates a new Guid from a byte slice. When swapEndianness is true the first
// 8 bytes are treated as a Microsoft-encoded GUID (little-endian Data1/Data2/Data3) and are
// converted to RFC-4122 big-endian order; the trailing 8 bytes are already byte-order neutral.
func FromBytes(data []byte, swapEndianness bool) (Guid, error) {
	swappedBytes := make([]byte, 16)
	var encodedBytes []byte

	if swapEndianness {
		var source [8]byte

		for i := 0; i < 16; i++ {
			swappedBytes[i] = data[i]

			if i < 8 {
				source[i] = swappedBytes[i]
			}
		}

		// Convert Microsoft encoding to RFC
		swappedBytes[3] = source[0]
		swappedBytes[2] = source[1]
		swappedBytes[1] = source[2]
		swappedBytes[0] = source[3]

		swappedBytes[4] = source[5]
		swappedBytes[5] = source[4]

		swappedBytes[6] = source[7]
		swappedBytes[7] = source[6]

		encodedBytes = swappedBytes
	} else {
		encodedBytes = data
	}

	id, err := uuid.FromBytes(encodedBytes)

	return Guid(id), err
}
