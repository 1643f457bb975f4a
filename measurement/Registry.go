//******************************************************************************************************
//  Registry.go - Gbtc
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
	"strconv"
	"strings"
	"sync"

	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/measurement/signalkind"
)

// ParseSignalReference attempts to parse a normally formatted signal reference into a source
// acronym, a signal kind, and a position representing original-source protocol placement details,
// e.g. "SHELBY-PA1" parses to source "SHELBY", kind Angle, position 1.
func ParseSignalReference(signalReference string) (source string, kind signalkind.SignalKind, position int) {
	parts := strings.Split(signalReference, "-")

	if len(parts) > 1 {
		lastIndex := len(parts) - 1
		typeInfo := parts[lastIndex]

		if len(typeInfo) > 2 {
			kind = signalkind.Parse(typeInfo[:2])
			position, _ = strconv.Atoi(typeInfo[2:])
		}

		source = strings.Join(parts[:lastIndex], "-")
	}

	return
}

// Registry is a per-connection view over the process-wide measurement key intern table: it tracks
// which signal IDs this connection has received metadata for, without itself owning any Metadata
// state (that always lives on the process-wide InternedKey, per the protocol's intern-table design).
// A DataSubscriber keeps one Registry per connection; a DataPublisher keeps one per served client.
type Registry struct {
	mutex sync.RWMutex
	keys  map[guid.Guid]*InternedKey
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[guid.Guid]*InternedKey)}
}

// Add registers key as known to this connection, interning it process-wide if necessary.
func (r *Registry) Add(signalID guid.Guid, source string, id uint64, metadata *Metadata) *InternedKey {
	key := InternKey(signalID, source, id)

	if metadata != nil {
		key.Update(metadata)
	}

	r.mutex.Lock()
	r.keys[signalID] = key
	r.mutex.Unlock()

	return key
}

// Get returns the InternedKey registered for signalID within this connection, or nil if this
// connection has not yet received metadata identifying that signal.
func (r *Registry) Get(signalID guid.Guid) *InternedKey {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.keys[signalID]
}

// Count returns the number of distinct signal IDs known to this connection.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.keys)
}

// Clear discards all entries, e.g., in response to a ConfigurationChanged notification that
// triggers a fresh metadata resynchronization.
func (r *Registry) Clear() {
	r.mutex.Lock()
	r.keys = make(map[guid.Guid]*InternedKey)
	r.mutex.Unlock()
}
