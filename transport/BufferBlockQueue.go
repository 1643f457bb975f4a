//******************************************************************************************************
//  BufferBlockQueue.go - Gbtc
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
//  07/31/2026 - Generated original version of source code; grounded on the BufferBlock type, but the
//       gap-caching reassembly queue itself has no prior counterpart (DataSubscriber never got far
//       enough to need one), so it follows the surrounding small, mutex-guarded, single-purpose
//       structure style (see measurement.Registry).
//
//******************************************************************************************************

package transport

import (
	"sync"

	"github.com/gridstream/sttp/measurement"
)

// BufferBlockQueue reassembles the sequence-numbered buffer-block stream into in-order delivery,
// regardless of wire arrival order. A block that arrives ahead of expected is cached; one that
// arrives at or behind expected is delivered (or dropped, if it is a retransmission duplicate) and
// triggers a drain of any now-contiguous cached blocks.
type BufferBlockQueue struct {
	mutex    sync.Mutex
	expected uint32
	pending  map[uint32]measurement.BufferBlock
}

// NewBufferBlockQueue creates a BufferBlockQueue with expected sequence 0, the state a fresh or
// freshly resubscribed session starts in.
func NewBufferBlockQueue() *BufferBlockQueue {
	return &BufferBlockQueue{pending: make(map[uint32]measurement.BufferBlock)}
}

// Reset returns the queue to expected sequence 0 and discards any cached out-of-order blocks, as
// required on every (re)subscribe.
func (q *BufferBlockQueue) Reset() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.expected = 0
	q.pending = make(map[uint32]measurement.BufferBlock)
}

// Receive admits one newly arrived buffer block at the given sequence number, returning the blocks
// now ready for in-order delivery to the consumer (zero, one, or many if this block closed a gap),
// and whether the block was accepted for acknowledgment purposes (false only for a stale
// retransmission duplicate, which the caller still acknowledges but does not deliver further).
func (q *BufferBlockQueue) Receive(seq uint32, block measurement.BufferBlock) ([]measurement.BufferBlock, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if seq < q.expected {
		return nil, false
	}

	if seq > q.expected {
		q.pending[seq] = block
		return nil, true
	}

	ready := []measurement.BufferBlock{block}
	q.expected++

	for {
		next, found := q.pending[q.expected]

		if !found {
			break
		}

		delete(q.pending, q.expected)
		ready = append(ready, next)
		q.expected++
	}

	return ready, true
}

// Expected returns the next sequence number the queue is waiting to deliver.
func (q *BufferBlockQueue) Expected() uint32 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.expected
}

// PendingCount returns the number of out-of-order blocks currently cached awaiting their gap to close.
func (q *BufferBlockQueue) PendingCount() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.pending)
}
