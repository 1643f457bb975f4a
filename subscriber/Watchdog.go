//******************************************************************************************************
//  Watchdog.go - Gbtc
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
//  07/31/2026 - Generated original version of source code. No prior counterpart exists for either
//       watchdog (DataSubscriber never got far enough to need one); grounded on the
//       small mutex-guarded struct style measurement.Registry and transport.BufferBlockQueue use.
//
//******************************************************************************************************

package subscriber

import (
	"sync"
	"time"
)

// dataLossWatchdog declares a data loss condition when no data arrives within interval of the last
// reset. A zero interval disables the watchdog.
type dataLossWatchdog struct {
	mutex    sync.Mutex
	timer    *time.Timer
	interval time.Duration
	onLoss   func()
}

func newDataLossWatchdog(interval time.Duration, onLoss func()) *dataLossWatchdog {
	return &dataLossWatchdog{interval: interval, onLoss: onLoss}
}

// Reset restarts the countdown, called every time a data packet or buffer block is received.
func (w *dataLossWatchdog) Reset() {
	if w.interval <= 0 {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.timer == nil {
		w.timer = time.AfterFunc(w.interval, w.fire)
		return
	}

	w.timer.Reset(w.interval)
}

func (w *dataLossWatchdog) fire() {
	if w.onLoss != nil {
		w.onLoss()
	}
}

// Stop cancels the countdown, called on disconnect or unsubscribe.
func (w *dataLossWatchdog) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

// parseExceptionTracker counts measurement parse failures within a sliding window, raising onThreshold
// once the count reaches threshold and resetting the window on each raise. A subscriber uses this to
// distinguish isolated decode hiccups from a sustained wire-format mismatch worth surfacing loudly.
type parseExceptionTracker struct {
	mutex       sync.Mutex
	threshold   int
	window      time.Duration
	count       int
	windowStart time.Time
	onThreshold func(count int)
	now         func() time.Time
}

func newParseExceptionTracker(threshold int, window time.Duration, onThreshold func(count int)) *parseExceptionTracker {
	return &parseExceptionTracker{
		threshold:   threshold,
		window:      window,
		onThreshold: onThreshold,
		now:         time.Now,
	}
}

// Record registers one parse exception, invoking onThreshold and resetting the window if threshold
// is reached within window of the first exception recorded in the current window.
func (t *parseExceptionTracker) Record() {
	if t.threshold <= 0 {
		return
	}

	t.mutex.Lock()

	now := t.now()

	if t.count == 0 || now.Sub(t.windowStart) > t.window {
		t.windowStart = now
		t.count = 0
	}

	t.count++
	count := t.count
	reached := count >= t.threshold

	if reached {
		t.count = 0
	}

	t.mutex.Unlock()

	if reached && t.onThreshold != nil {
		t.onThreshold(count)
	}
}

// Reset clears the tracker, called on resubscribe so stale counts from a prior session do not carry
// forward into the new one.
func (t *parseExceptionTracker) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.count = 0
	t.windowStart = time.Time{}
}
