//******************************************************************************************************
//  SignalIndexCache.go - Gbtc
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
//  09/09/2021 - J. Ritchie Carroll
//       Generated original version of source code.
//  07/31/2026 - Narrowed the signal index from a 32-bit to a 16-bit handle and added the publisher-side
//       Encode, the mirror image of decode.
//
//******************************************************************************************************

package transport

import (
	"errors"

	"github.com/gridstream/sttp/bytecodec"
	"github.com/gridstream/sttp/guid"
)

// SignalIndexCache maps 16-bit runtime indices to 128-bit globally unique measurement IDs. The
// structure additionally provides reverse lookup and an extra mapping to human-readable measurement
// keys (source, id). A session installs a new cache atomically on every Subscribe or resubscribe.
type SignalIndexCache struct {
	reference      map[uint16]int
	signalIDList   []guid.Guid
	sourceList     []string
	idList         []uint64
	signalIDCache  map[guid.Guid]uint16
	binaryLength   uint32
	maxSignalIndex uint16
	unauthorized   []guid.Guid
}

// NewSignalIndexCache makes a new, empty SignalIndexCache.
func NewSignalIndexCache() *SignalIndexCache {
	return &SignalIndexCache{
		reference:     make(map[uint16]int),
		signalIDCache: make(map[guid.Guid]uint16),
	}
}

// AddRecord adds a new record to the SignalIndexCache for the given signal index and key details.
// charSizeEstimate is the number of bytes a single character occupies in the negotiated operational
// encoding and is used only to keep the running BinaryLength estimate roughly accurate.
func (sic *SignalIndexCache) AddRecord(signalIndex uint16, signalID guid.Guid, source string, id uint64, charSizeEstimate uint32) {
	index := len(sic.signalIDList)
	sic.reference[signalIndex] = index
	sic.signalIDList = append(sic.signalIDList, signalID)
	sic.sourceList = append(sic.sourceList, source)
	sic.idList = append(sic.idList, id)
	sic.signalIDCache[signalID] = signalIndex

	if signalIndex > sic.maxSignalIndex {
		sic.maxSignalIndex = signalIndex
	}

	// Char size here helps provide a rough-estimate on binary length used to reserve bytes for
	// a vector; exact size, if needed, requires RecalculateBinaryLength.
	sic.binaryLength += 32 + uint32(len(source))*charSizeEstimate
}

// AddUnauthorized records a signal ID that was requested but denied authorization, so that it is
// carried along in the wire cache for client-side reporting without being otherwise resolvable.
func (sic *SignalIndexCache) AddUnauthorized(signalID guid.Guid) {
	sic.unauthorized = append(sic.unauthorized, signalID)
}

// Clear removes all records from the SignalIndexCache, returning it to a fresh state for reuse by
// a publisher about to install a brand new signal set for a client.
func (sic *SignalIndexCache) Clear() {
	sic.reference = make(map[uint16]int)
	sic.signalIDList = nil
	sic.sourceList = nil
	sic.idList = nil
	sic.signalIDCache = make(map[guid.Guid]uint16)
	sic.unauthorized = nil
	sic.binaryLength = 0
	sic.maxSignalIndex = 0
}

// Contains determines if the specified signalIndex exists within the SignalIndexCache.
func (sic *SignalIndexCache) Contains(signalIndex uint16) bool {
	_, ok := sic.reference[signalIndex]
	return ok
}

// SignalID returns the signal ID Guid for the specified signalIndex in the SignalIndexCache.
func (sic *SignalIndexCache) SignalID(signalIndex uint16) guid.Guid {
	if index, ok := sic.reference[signalIndex]; ok {
		return sic.signalIDList[index]
	}

	return guid.Empty
}

// SignalIDs returns a HashSet for all the Guid values found in the SignalIndexCache.
func (sic *SignalIndexCache) SignalIDs() guid.HashSet {
	return guid.NewHashSet(sic.signalIDList)
}

// Source returns the measurement source string for the specified signalIndex in the SignalIndexCache.
func (sic *SignalIndexCache) Source(signalIndex uint16) string {
	if index, ok := sic.reference[signalIndex]; ok {
		return sic.sourceList[index]
	}

	return ""
}

// ID returns the measurement integer ID for the specified signalIndex in the SignalIndexCache.
func (sic *SignalIndexCache) ID(signalIndex uint16) uint64 {
	if index, ok := sic.reference[signalIndex]; ok {
		return sic.idList[index]
	}

	return measurementKeyUndefinedID
}

// Record returns the key measurement values (signal ID, source, and integer ID) and a final boolean
// value representing find success for the specified signalIndex in the SignalIndexCache.
func (sic *SignalIndexCache) Record(signalIndex uint16) (guid.Guid, string, uint64, bool) {
	if index, ok := sic.reference[signalIndex]; ok {
		return sic.signalIDList[index], sic.sourceList[index], sic.idList[index], true
	}

	return guid.Empty, "", 0, false
}

// SignalIndex returns the signal index for the specified signalID Guid in the SignalIndexCache, or
// false if signalID is not currently present in the cache.
func (sic *SignalIndexCache) SignalIndex(signalID guid.Guid) (uint16, bool) {
	index, ok := sic.signalIDCache[signalID]
	return index, ok
}

// MaxSignalIndex gets the largest signal index in the SignalIndexCache.
func (sic *SignalIndexCache) MaxSignalIndex() uint16 {
	return sic.maxSignalIndex
}

// Count returns the number of measurement records that can be found in the SignalIndexCache.
func (sic *SignalIndexCache) Count() int {
	return len(sic.signalIDCache)
}

// BinaryLength gets the estimated binary length, in bytes, for the SignalIndexCache.
func (sic *SignalIndexCache) BinaryLength() uint32 {
	return sic.binaryLength
}

const measurementKeyUndefinedID = ^uint64(0)

// stringCodec abstracts the subset of the negotiated operational-encoding behavior that the signal
// index cache needs: turning wire bytes into a string and back. Encoding satisfies this via its
// EncodeString/DecodeString methods.
type stringCodec interface {
	EncodeString(value string) []byte
	DecodeString(data []byte) string
}

// DecodeSignalIndexCache parses a SignalIndexCache from the specified byte buffer received over the
// command channel, along with the subscriber ID the publisher stamped into the payload.
func DecodeSignalIndexCache(codec stringCodec, buffer []byte) (*SignalIndexCache, guid.Guid, error) {
	sic := NewSignalIndexCache()
	var subscriberID guid.Guid

	length := uint32(len(buffer))

	if length < 4 {
		return nil, subscriberID, errors.New("not enough buffer provided to parse signal index cache")
	}

	var offset uint32

	binaryLength, err := bytecodec.UInt32(buffer)

	if err != nil {
		return nil, subscriberID, err
	}

	offset += 4

	if length < binaryLength {
		return nil, subscriberID, errors.New("not enough buffer provided to parse signal index cache")
	}

	subscriberID, err = bytecodec.Guid(buffer[offset:])

	if err != nil {
		return nil, subscriberID, errors.New("failed to parse subscriber ID: " + err.Error())
	}

	offset += 16

	referenceCount, err := bytecodec.UInt32(buffer[offset:])

	if err != nil {
		return nil, subscriberID, err
	}

	offset += 4

	var i uint32

	for i = 0; i < referenceCount; i++ {
		signalIndex, err := bytecodec.UInt16(buffer[offset:])

		if err != nil {
			return nil, subscriberID, err
		}

		offset += 2

		signalID, err := bytecodec.Guid(buffer[offset:])

		if err != nil {
			return nil, subscriberID, errors.New("failed to parse signal ID: " + err.Error())
		}

		offset += 16

		sourceSize, err := bytecodec.UInt32(buffer[offset:])

		if err != nil {
			return nil, subscriberID, err
		}

		offset += 4

		source := codec.DecodeString(buffer[offset : offset+sourceSize])
		offset += sourceSize

		id, err := bytecodec.UInt64(buffer[offset:])

		if err != nil {
			return nil, subscriberID, err
		}

		offset += 8

		sic.AddRecord(signalIndex, signalID, source, id, 1)
	}

	unauthorizedCount, err := bytecodec.UInt32(buffer[offset:])

	if err == nil {
		offset += 4

		for i = 0; i < unauthorizedCount; i++ {
			signalID, err := bytecodec.Guid(buffer[offset:])

			if err != nil {
				break
			}

			offset += 16
			sic.AddUnauthorized(signalID)
		}
	}

	return sic, subscriberID, nil
}

// Encode serializes the SignalIndexCache to a byte buffer for publication to a subscriber, in the
// same wire layout understood by DecodeSignalIndexCache.
func (sic *SignalIndexCache) Encode(codec stringCodec, subscriberID guid.Guid) []byte {
	buffer := make([]byte, 4, sic.binaryLength+64)

	bytecodec.PutGuid(extendBuffer(&buffer, 16), subscriberID)
	bytecodec.PutUInt32(extendBuffer(&buffer, 4), uint32(len(sic.signalIDList)))

	for signalIndex, index := range sic.reference {
		bytecodec.PutUInt16(extendBuffer(&buffer, 2), signalIndex)
		bytecodec.PutGuid(extendBuffer(&buffer, 16), sic.signalIDList[index])

		encodedSource := codec.EncodeString(sic.sourceList[index])
		bytecodec.PutUInt32(extendBuffer(&buffer, 4), uint32(len(encodedSource)))
		buffer = append(buffer, encodedSource...)

		bytecodec.PutUInt64(extendBuffer(&buffer, 8), sic.idList[index])
	}

	bytecodec.PutUInt32(extendBuffer(&buffer, 4), uint32(len(sic.unauthorized)))

	for _, signalID := range sic.unauthorized {
		bytecodec.PutGuid(extendBuffer(&buffer, 16), signalID)
	}

	bytecodec.PutUInt32(buffer[0:4], uint32(len(buffer)-4))

	return buffer
}

// extendBuffer grows buf by n zeroed bytes and returns a slice over just the new bytes, letting
// callers fill a fixed-width field in place without separately tracking a write offset.
func extendBuffer(buf *[]byte, n int) []byte {
	start := len(*buf)
	*buf = append(*buf, make([]byte, n)...)
	return (*buf)[start : start+n]
}
