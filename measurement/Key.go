//******************************************************************************************************
//  Key.go - Gbtc
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
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridstream/sttp/guid"
)

// Key is the process-wide interned identity of a measurement: its globally unique signal ID plus
// the legacy "source:id" human-readable measurement key used by upstream historian integrations.
// Key values are comparable and safe to use as map keys; the canonical Key for a given SignalID or
// (Source, ID) pair is always obtained through InternKey, never constructed directly by callers
// that intend to look one up later by identity.
type Key struct {
	// SignalID is the measurement's globally unique identifier.
	SignalID guid.Guid

	// Source is the origin acronym portion of the human-readable measurement key, e.g. "PPA".
	Source string

	// ID is the numeric portion of the human-readable measurement key.
	ID uint64
}

// String renders the key in "Source:ID" form, matching the conventional measurement-key notation.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Source, k.ID)
}

// UndefinedSource and UndefinedID together form the sentinel "undefined" measurement key, used
// when a compact measurement or signal-index record references a signal index that carries no
// resolved identity.
const (
	UndefinedSource = "__"
	UndefinedID     = math.MaxUint64
)

// Undefined is the sentinel key denoting an unresolved measurement identity.
var Undefined = Key{SignalID: guid.Empty, Source: UndefinedSource, ID: UndefinedID}

// Metadata is the immutable, attached information describing a measurement key: its value
// adjustment coefficients and descriptive fields. Updates never mutate a live Metadata value in
// place; InternedKey.Update atomically swaps in a new one.
type Metadata struct {
	// Adder is an additive value modifier applied after Multiplier.
	Adder float64

	// Multiplier is a multiplicative value modifier applied before Adder.
	Multiplier float64

	// SignalType is the four-character signal type acronym, e.g. "FREQ".
	SignalType string

	// SignalReference carries original-source protocol placement details.
	SignalReference string

	// Description is a general human-readable description of the measurement.
	Description string

	// Tag is the human-readable tag name commonly used to identify the measurement.
	Tag string

	// UpdatedOn is the time this Metadata value was installed.
	UpdatedOn time.Time
}

// defaultMetadata is installed for every newly interned key until an explicit Update call
// attaches real metadata; Multiplier defaults to 1 so AdjustedValue is a no-op until then.
var defaultMetadata = &Metadata{Multiplier: 1}

// InternedKey is a process-wide interned measurement key together with its currently attached
// Metadata. Only InternKey, Lookup, and LookupBySource produce InternedKey values.
type InternedKey struct {
	Key Key

	metadata atomic.Pointer[Metadata]
}

// Metadata returns the currently attached Metadata for this interned key. The returned value is
// never mutated in place; a concurrent Update call installs a different value without disturbing
// callers already holding a reference to the prior one.
func (ik *InternedKey) Metadata() *Metadata {
	return ik.metadata.Load()
}

// Update atomically swaps in a new Metadata value for this interned key.
func (ik *InternedKey) Update(metadata *Metadata) {
	ik.metadata.Store(metadata)
}

// AdjustedValue applies this key's currently attached Metadata adjustment coefficients to value.
func (ik *InternedKey) AdjustedValue(value float64) float64 {
	metadata := ik.Metadata()
	return value*metadata.Multiplier + metadata.Adder
}

var (
	internMutex  sync.Mutex
	bySignalID   = map[guid.Guid]*InternedKey{}
	bySourceID   = map[Key]*InternedKey{}
	undefinedKey = &InternedKey{Key: Undefined}
)

func init() {
	undefinedKey.metadata.Store(defaultMetadata)
	bySignalID[Undefined.SignalID] = undefinedKey
	bySourceID[sourceIDOnly(Undefined)] = undefinedKey
}

// sourceIDOnly reduces a Key to just its (Source, ID) component for use as a lookup key distinct
// from the SignalID-keyed table, since a caller may intern by either identity independently.
func sourceIDOnly(key Key) Key {
	return Key{Source: key.Source, ID: key.ID}
}

// InternKey returns the canonical InternedKey for the given identity, creating and registering
// one under a single write lock if this is the first time either component of the identity has
// been seen. Subsequent calls with an equivalent SignalID, or an equivalent (Source, ID) pair,
// return the same InternedKey instance. Lookups (Lookup, LookupBySource) take the same mutex, so
// they are not lock-free and wait while an InternKey call holds it.
func InternKey(signalID guid.Guid, source string, id uint64) *InternedKey {
	internMutex.Lock()
	defer internMutex.Unlock()

	if existing, found := bySignalID[signalID]; found {
		return existing
	}

	sourceKey := Key{Source: source, ID: id}

	if existing, found := bySourceID[sourceKey]; found {
		return existing
	}

	interned := &InternedKey{Key: Key{SignalID: signalID, Source: source, ID: id}}
	interned.metadata.Store(defaultMetadata)

	bySignalID[signalID] = interned
	bySourceID[sourceKey] = interned

	return interned
}

// Lookup returns the InternedKey registered for signalID, or nil if none has been interned yet.
func Lookup(signalID guid.Guid) *InternedKey {
	internMutex.Lock()
	defer internMutex.Unlock()

	return bySignalID[signalID]
}

// LookupBySource returns the InternedKey registered for the (source, id) pair, or nil if none
// has been interned yet.
func LookupBySource(source string, id uint64) *InternedKey {
	internMutex.Lock()
	defer internMutex.Unlock()

	return bySourceID[Key{Source: source, ID: id}]
}
