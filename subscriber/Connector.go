//******************************************************************************************************
//  Connector.go - Gbtc
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
//  07/31/2026 - Generated original version of source code, an exponential back-off reconnect loop
//       patterned after sttp/transport/SubscriberConnector.go.
//
//******************************************************************************************************

// Package subscriber implements the client side of an STTP session: connecting to a publisher,
// negotiating operational modes, requesting metadata, subscribing to measurements, and dispatching
// received data to caller-supplied callbacks.
package subscriber

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gridstream/sttp/thread"
	"github.com/tevino/abool/v2"
)

// ConnectStatusEnum defines the type for the ConnectStatus enumeration.
type ConnectStatusEnum int

// ConnectStatus is an enumeration of the possible outcomes of a connection attempt.
var ConnectStatus = struct {
	Success  ConnectStatusEnum
	Failed   ConnectStatusEnum
	Canceled ConnectStatusEnum
}{
	Success:  1,
	Failed:   0,
	Canceled: -1,
}

// Connector establishes or automatically reestablishes a Session's connection to a publisher,
// applying an exponential back-off between retries.
type Connector struct {
	// ErrorMessageCallback is called when an error message should be logged.
	ErrorMessageCallback func(string)

	// ReconnectCallback is called after a reconnect attempt completes, successfully or not.
	ReconnectCallback func(*Session)

	// Hostname is the DataPublisher DNS name or IP.
	Hostname string

	// Port is the TCP/IP listening port of the DataPublisher.
	Port uint16

	// MaxRetries defines the maximum number of times to retry a connection. -1 retries infinitely.
	MaxRetries int32

	// RetryInterval defines the base retry interval, in milliseconds. Retries exponentially back
	// off starting from this interval.
	RetryInterval int32

	// MaxRetryInterval defines the maximum retry interval, in milliseconds.
	MaxRetryInterval int32

	// AutoReconnect determines if connections should be automatically reattempted.
	AutoReconnect bool

	connectAttempt       int32
	connectionRefused    abool.AtomicBool
	cancel               abool.AtomicBool
	reconnectThread      *thread.Thread
	reconnectThreadMutex sync.Mutex
	waitTimer            *time.Timer
	waitTimerMutex       sync.Mutex

	assigningHandlerMutex sync.RWMutex
}

// NewConnector creates a Connector with the default retry parameters.
func NewConnector() *Connector {
	return &Connector{
		MaxRetries:       -1,
		RetryInterval:    1000,
		MaxRetryInterval: 30000,
		AutoReconnect:    true,
	}
}

func (sc *Connector) autoReconnect(session *Session) {
	if sc.cancel.IsSet() || session.disposing.IsSet() {
		return
	}

	sc.reconnectThreadMutex.Lock()
	reconnectThread := sc.reconnectThread
	sc.reconnectThreadMutex.Unlock()

	if reconnectThread != nil {
		reconnectThread.Join()
	}

	reconnectThread = thread.NewThread(func() {
		if sc.connectionRefused.IsNotSet() {
			sc.ResetConnection()
		}

		if sc.MaxRetries != -1 && sc.connectAttempt >= sc.MaxRetries {
			sc.dispatchErrorMessage("Maximum connection retries attempted. Auto-reconnect canceled.")
			return
		}

		sc.waitForRetry()

		if sc.cancel.IsSet() || session.disposing.IsSet() {
			return
		}

		if sc.connect(session, true) == ConnectStatus.Canceled {
			return
		}

		sc.BeginCallbackSync()

		if sc.cancel.IsNotSet() && sc.ReconnectCallback != nil {
			sc.ReconnectCallback(session)
		}

		sc.EndCallbackSync()
	})

	sc.reconnectThreadMutex.Lock()
	sc.reconnectThread = reconnectThread
	sc.reconnectThreadMutex.Unlock()

	reconnectThread.Start()
}

func (sc *Connector) waitForRetry() {
	var exponent float64

	if sc.connectAttempt > 13 {
		exponent = 12
	} else {
		exponent = float64(sc.connectAttempt - 1)
	}

	var retryInterval int32

	if sc.connectAttempt > 0 {
		retryInterval = sc.RetryInterval * int32(math.Pow(2, exponent))
	}

	if retryInterval > sc.MaxRetryInterval {
		retryInterval = sc.MaxRetryInterval
	}

	var message strings.Builder

	message.WriteString("Connection")

	if sc.connectAttempt > 0 {
		message.WriteString(" attempt ")
		message.WriteString(strconv.Itoa(int(sc.connectAttempt + 1)))
	}

	message.WriteString(" to \"")
	message.WriteString(sc.Hostname)
	message.WriteString(":")
	message.WriteString(strconv.Itoa(int(sc.Port)))
	message.WriteString("\" was terminated. ")

	if retryInterval > 0 {
		message.WriteString("Attempting to reconnect in ")
		message.WriteString(fmt.Sprintf("%.2f", float64(retryInterval)/1000.0))
		message.WriteString(" seconds...")
	} else {
		message.WriteString("Attempting to reconnect...")
	}

	sc.dispatchErrorMessage(message.String())

	waitTimer := time.NewTimer(time.Duration(retryInterval) * time.Millisecond)

	sc.waitTimerMutex.Lock()
	sc.waitTimer = waitTimer
	sc.waitTimerMutex.Unlock()

	<-waitTimer.C
}

// Connect initiates a connection sequence for a Session.
func (sc *Connector) Connect(session *Session) ConnectStatusEnum {
	if sc.cancel.IsSet() {
		return ConnectStatus.Canceled
	}

	return sc.connect(session, false)
}

func (sc *Connector) connect(session *Session, autoReconnecting bool) ConnectStatusEnum {
	if sc.AutoReconnect {
		session.autoReconnectCallback = sc.autoReconnect
	}

	sc.cancel.UnSet()

	for session.disposing.IsNotSet() {
		if sc.MaxRetries != -1 && sc.connectAttempt >= sc.MaxRetries {
			sc.dispatchErrorMessage("Maximum connection retries attempted. Auto-reconnect canceled.")
			break
		}

		sc.connectAttempt++

		if session.disposing.IsSet() {
			return ConnectStatus.Canceled
		}

		err := session.connect(sc.Hostname, sc.Port, autoReconnecting)

		if err == nil {
			sc.connectionRefused.UnSet()
			break
		}

		if isConnectionRefused(err) {
			sc.connectionRefused.Set()
		}

		if session.disposing.IsNotSet() && sc.RetryInterval > 0 {
			autoReconnecting = true
			sc.waitForRetry()

			if sc.cancel.IsSet() {
				return ConnectStatus.Canceled
			}
		}
	}

	if session.disposing.IsSet() {
		return ConnectStatus.Canceled
	}

	if session.IsConnected() {
		return ConnectStatus.Success
	}

	return ConnectStatus.Failed
}

// Cancel stops all current and future connection sequences.
func (sc *Connector) Cancel() {
	sc.cancel.Set()

	sc.waitTimerMutex.Lock()
	waitTimer := sc.waitTimer
	sc.waitTimerMutex.Unlock()

	if waitTimer != nil {
		waitTimer.Stop()
	}

	sc.reconnectThreadMutex.Lock()
	reconnectThread := sc.reconnectThread
	sc.reconnectThreadMutex.Unlock()

	if reconnectThread != nil {
		reconnectThread.Join()
	}
}

// ResetConnection resets the Connector for a new connection.
func (sc *Connector) ResetConnection() {
	sc.connectAttempt = 0
	sc.cancel.UnSet()
}

func (sc *Connector) dispatchErrorMessage(message string) {
	sc.BeginCallbackSync()

	if sc.ErrorMessageCallback != nil {
		go sc.ErrorMessageCallback(message)
	}

	sc.EndCallbackSync()
}

// BeginCallbackAssignment informs the Connector that a callback change has been initiated.
func (sc *Connector) BeginCallbackAssignment() {
	sc.assigningHandlerMutex.Lock()
}

// BeginCallbackSync begins a callback synchronization operation.
func (sc *Connector) BeginCallbackSync() {
	sc.assigningHandlerMutex.RLock()
}

// EndCallbackSync ends a callback synchronization operation.
func (sc *Connector) EndCallbackSync() {
	sc.assigningHandlerMutex.RUnlock()
}

// EndCallbackAssignment informs the Connector that a callback change has been completed.
func (sc *Connector) EndCallbackAssignment() {
	sc.assigningHandlerMutex.Unlock()
}

func isConnectionRefused(err error) bool {
	return err != nil && strings.Contains(err.Error(), "refused")
}
