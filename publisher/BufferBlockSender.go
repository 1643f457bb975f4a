//******************************************************************************************************
//  BufferBlockSender.go - Gbtc
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
//  07/31/2026 - Generated original version of source code. No prior counterpart exists for the send
//       side of reliable buffer-block delivery (transport.BufferBlockQueue only
//       reassembles inbound blocks); grounded on that type's mutex-guarded, sequence-indexed map
//       structure and on subscriber/Watchdog.go's time.AfterFunc retry style.
//
//******************************************************************************************************

package publisher

import (
	"sync"
	"time"

	"github.com/gridstream/sttp/guid"
)

// pendingBlock is one sent-but-unacknowledged buffer block awaiting ConfirmBufferBlock.
type pendingBlock struct {
	signalID guid.Guid
	payload  []byte
	timer    *time.Timer
	attempts int
}

// BufferBlockSender tracks outbound buffer blocks by sequence number until the subscriber confirms
// receipt, retransmitting any block that goes unacknowledged past timeout. One sender is owned by
// each subscribed ClientConnection.
type BufferBlockSender struct {
	mutex      sync.Mutex
	nextSeq    uint32
	timeout    time.Duration
	maxRetries int
	pending    map[uint32]*pendingBlock
	send       func(seq uint32, signalID guid.Guid, payload []byte)
	giveUp     func(seq uint32)
}

// NewBufferBlockSender creates a BufferBlockSender that invokes send to (re)transmit a block on the
// wire and giveUp when a block exceeds maxRetries retransmissions without acknowledgment.
func NewBufferBlockSender(timeout time.Duration, maxRetries int, send func(seq uint32, signalID guid.Guid, payload []byte), giveUp func(seq uint32)) *BufferBlockSender {
	return &BufferBlockSender{
		timeout:    timeout,
		maxRetries: maxRetries,
		pending:    make(map[uint32]*pendingBlock),
		send:       send,
		giveUp:     giveUp,
	}
}

// Reset cancels all pending retransmit timers and returns the sender to sequence 0, called whenever
// the owning client (re)subscribes.
func (s *BufferBlockSender) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, block := range s.pending {
		block.timer.Stop()
	}

	s.pending = make(map[uint32]*pendingBlock)
	s.nextSeq = 0
}

// Send assigns the next sequence number to a new buffer block, transmits it, and starts its
// acknowledgment timer. Returns the assigned sequence number.
func (s *BufferBlockSender) Send(signalID guid.Guid, payload []byte) uint32 {
	s.mutex.Lock()

	seq := s.nextSeq
	s.nextSeq++

	block := &pendingBlock{signalID: signalID, payload: payload}
	block.timer = time.AfterFunc(s.timeout, func() { s.retransmit(seq) })
	s.pending[seq] = block

	s.mutex.Unlock()

	s.send(seq, signalID, payload)

	return seq
}

func (s *BufferBlockSender) retransmit(seq uint32) {
	s.mutex.Lock()

	block, ok := s.pending[seq]

	if !ok {
		s.mutex.Unlock()
		return
	}

	block.attempts++

	if block.attempts > s.maxRetries {
		delete(s.pending, seq)
		s.mutex.Unlock()

		if s.giveUp != nil {
			s.giveUp(seq)
		}

		return
	}

	block.timer = time.AfterFunc(s.timeout, func() { s.retransmit(seq) })
	signalID, payload := block.signalID, block.payload

	s.mutex.Unlock()

	pmBufferBlockRetransmits.Inc()
	s.send(seq, signalID, payload)
}

// Acknowledge cancels the retransmit timer for seq, called on receipt of ConfirmBufferBlock.
func (s *BufferBlockSender) Acknowledge(seq uint32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	block, ok := s.pending[seq]

	if !ok {
		return
	}

	block.timer.Stop()
	delete(s.pending, seq)
}

// PendingCount returns the number of buffer blocks currently awaiting acknowledgment.
func (s *BufferBlockSender) PendingCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.pending)
}
