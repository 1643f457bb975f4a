//******************************************************************************************************
//  BufferBlockQueue_test.go - Gbtc
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

	"github.com/gridstream/sttp/measurement"
)

func block(tag byte) measurement.BufferBlock {
	return measurement.BufferBlock{Buffer: []byte{tag}}
}

// TestBufferBlockQueueGapRecovery mirrors the S5 scenario: sequences 0, 2, 1 arrive in that order;
// expect delivery of 0 immediately, then 1 and 2 together once 1 arrives and closes the gap.
func TestBufferBlockQueueGapRecovery(t *testing.T) {
	q := NewBufferBlockQueue()

	ready, accepted := q.Receive(0, block('a'))

	if !accepted || len(ready) != 1 || ready[0].Buffer[0] != 'a' {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected immediate delivery of seq 0, got %+v", ready)
	}

	ready, accepted = q.Receive(2, block('c'))

	if !accepted || len(ready) != 0 {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected seq 2 to be cached, not delivered, got %+v", ready)
	}

	if q.PendingCount() != 1 {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected 1 pending block, got %d", q.PendingCount())
	}

	ready, accepted = q.Receive(1, block('b'))

	if !accepted || len(ready) != 2 {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected seq 1 to release both 1 and 2, got %+v", ready)
	}

	if ready[0].Buffer[0] != 'b' || ready[1].Buffer[0] != 'c' {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected in-order delivery b then c, got %+v", ready)
	}

	if q.PendingCount() != 0 {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected no pending blocks after drain")
	}

	if q.Expected() != 3 {
		t.Fatalf("TestBufferBlockQueueGapRecovery: expected next sequence 3, got %d", q.Expected())
	}
}

func TestBufferBlockQueueDropsRetransmission(t *testing.T) {
	q := NewBufferBlockQueue()

	q.Receive(0, block('a'))
	q.Receive(1, block('b'))

	ready, accepted := q.Receive(0, block('a'))

	if accepted {
		t.Fatalf("TestBufferBlockQueueDropsRetransmission: expected stale retransmission to be rejected")
	}

	if len(ready) != 0 {
		t.Fatalf("TestBufferBlockQueueDropsRetransmission: expected no delivery for a dropped retransmission")
	}
}

func TestBufferBlockQueueResetOnResubscribe(t *testing.T) {
	q := NewBufferBlockQueue()

	q.Receive(0, block('a'))
	q.Receive(2, block('c'))

	q.Reset()

	if q.Expected() != 0 {
		t.Fatalf("TestBufferBlockQueueResetOnResubscribe: expected expected sequence reset to 0")
	}

	if q.PendingCount() != 0 {
		t.Fatalf("TestBufferBlockQueueResetOnResubscribe: expected pending cache cleared")
	}
}
