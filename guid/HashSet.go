//******************************************************************************************************
//  HashSet.go - Gbtc
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

// HashSet represents an unordered set of unique Guid values, e.g., the signal IDs currently
// authorized or referenced by a signal-index cache.
type HashSet map[Guid]struct{}

// NewHashSet creates a HashSet from the specified slice of Guid values.
func NewHashSet(values []Guid) HashSet {
	set := make(HashSet, len(values))

	for _, value := range values {
		set[value] = struct{}{}
	}

	return set
}

// Add inserts the specified value into the HashSet.
func (hs HashSet) Add(value Guid) {
	hs[value] = struct{}{}
}

// Remove deletes the specified value from the HashSet.
func (hs HashSet) Remove(value Guid) {
	delete(hs, value)
}

// Contains returns true if the specified value exists in the HashSet.
func (hs HashSet) Contains(value Guid) bool {
	_, found := hs[value]
	return found
}

// Slice returns the contents of the HashSet as a Guid slice in indeterminate order.
func (hs HashSet) Slice() []Guid {
	values := make([]Guid, 0, len(hs))

	for value := range hs {
		values = append(values, value)
	}

	return values
}
