//******************************************************************************************************
//  Publisher.go - Gbtc
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
//  07/31/2026 - Generated original version of source code. The accept-loop/registry/fan-out shape
//       mirrors subscriber/Connector.go's reconnect-and-dial loop run in reverse: here the publisher
//       listens and a goroutine per accepted connection plays the role Connector's single dial
//       attempt plays for a DataSubscriber.
//
//******************************************************************************************************

package publisher

import (
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gridstream/sttp/filter"
	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/metadata"
	"github.com/gridstream/sttp/transport"
)

// Publisher accepts subscriber connections and fans out measurements to each client according to
// its negotiated operational modes and active subscription.
type Publisher struct {
	config   *Config
	listener net.Listener

	clientsMutex sync.RWMutex
	clients      map[guid.Guid]*ClientConnection

	metadataMutex sync.RWMutex
	dataSet       *metadata.DataSet
	pointTagIndex map[string]guid.Guid

	cipherTicker *time.Ticker
	noopTicker   *time.Ticker
	stopChan     chan struct{}
	stopOnce     sync.Once

	// ClientConnectedCallback is called with a newly accepted client once its command channel socket
	// is open, before DefineOperationalModes has necessarily been received.
	ClientConnectedCallback func(*ClientConnection)
	// ClientDisconnectedCallback is called once a client's connection has fully closed.
	ClientDisconnectedCallback func(*ClientConnection)
	// StatusMessageCallback is called with publisher-wide informational status text.
	StatusMessageCallback func(string)
	// ErrorMessageCallback is called with publisher-wide error text.
	ErrorMessageCallback func(string)
}

// NewPublisher creates a Publisher using config, or defaults when config is nil.
func NewPublisher(config *Config) *Publisher {
	if config == nil {
		config = NewConfig()
	}

	return &Publisher{
		config:   config,
		clients:  make(map[guid.Guid]*ClientConnection),
		stopChan: make(chan struct{}),
	}
}

// SetMetadata installs the DataSet a client's MetadataRefresh and Subscribe requests are resolved
// against, rebuilding the point-tag index used by resolveInputMeasurementKeys.
func (p *Publisher) SetMetadata(dataSet *metadata.DataSet) {
	index := make(map[string]guid.Guid)

	if table := dataSet.Table("MeasurementDetail"); table != nil {
		signalIDColumn := table.ColumnIndex("SignalID")
		pointTagColumn := table.ColumnIndex("PointTag")

		if signalIDColumn >= 0 && pointTagColumn >= 0 {
			for i := 0; i < table.RowCount(); i++ {
				row := table.Row(i)

				if row == nil {
					continue
				}

				signalID, err := row.ValueAsGuid(signalIDColumn)

				if err != nil {
					continue
				}

				pointTag, err := row.ValueAsString(pointTagColumn)

				if err != nil || pointTag == "" {
					continue
				}

				index[strings.ToUpper(pointTag)] = signalID
			}
		}
	}

	p.metadataMutex.Lock()
	p.dataSet = dataSet
	p.pointTagIndex = index
	p.metadataMutex.Unlock()

	p.notifyConfigurationChanged()
}

// Metadata returns the currently installed DataSet, or nil if none has been set.
func (p *Publisher) Metadata() *metadata.DataSet {
	p.metadataMutex.RLock()
	defer p.metadataMutex.RUnlock()

	return p.dataSet
}

func (p *Publisher) notifyConfigurationChanged() {
	p.clientsMutex.RLock()
	defer p.clientsMutex.RUnlock()

	for _, client := range p.clients {
		if client.State() >= ClientState.ModesDefined {
			client.SendConfigurationChanged()
		}
	}
}

// Start begins listening on config.ListenAddress and accepting subscriber connections.
func (p *Publisher) Start() error {
	listener, err := net.Listen("tcp", p.config.ListenAddress)

	if err != nil {
		return err
	}

	p.listener = listener

	go p.acceptLoop()

	rotationPeriod := p.config.CipherKeyRotationPeriod

	if rotationPeriod < transport.MinimumCipherKeyRotationPeriod {
		rotationPeriod = transport.MinimumCipherKeyRotationPeriod
	}

	p.cipherTicker = time.NewTicker(time.Duration(rotationPeriod) * time.Millisecond)
	go p.cipherRotationLoop()

	p.noopTicker = time.NewTicker(30 * time.Second)
	go p.noopLoop()

	p.dispatchStatus("Listening for subscriber connections on " + p.config.ListenAddress + ".")

	return nil
}

func (p *Publisher) acceptLoop() {
	for {
		conn, err := p.listener.Accept()

		if err != nil {
			select {
			case <-p.stopChan:
				return
			default:
				p.dispatchError("Accept failure: " + err.Error())
				return
			}
		}

		client := newClientConnection(p, conn)
		client.StatusMessageCallback = p.StatusMessageCallback
		client.ErrorMessageCallback = p.ErrorMessageCallback

		p.clientsMutex.Lock()
		p.clients[client.SubscriberID()] = client
		p.clientsMutex.Unlock()

		pmClientsConnected.Inc()
		pmClientsTotal.Inc()

		if p.ClientConnectedCallback != nil {
			go p.ClientConnectedCallback(client)
		}

		go client.run()
	}
}

func (p *Publisher) cipherRotationLoop() {
	for {
		select {
		case <-p.stopChan:
			return
		case <-p.cipherTicker.C:
			p.clientsMutex.RLock()
			clients := make([]*ClientConnection, 0, len(p.clients))

			for _, client := range p.clients {
				if client.isCipherEnabled() {
					clients = append(clients, client)
				}
			}

			p.clientsMutex.RUnlock()

			for _, client := range clients {
				client.handleRotateCipherKeys()
			}
		}
	}
}

func (p *Publisher) noopLoop() {
	for {
		select {
		case <-p.stopChan:
			return
		case <-p.noopTicker.C:
			p.clientsMutex.RLock()

			for _, client := range p.clients {
				if client.State() >= ClientState.ModesDefined {
					client.sendNoOp()
				}
			}

			p.clientsMutex.RUnlock()
		}
	}
}

// removeClient drops a closed client's entry from the registry.
func (p *Publisher) removeClient(client *ClientConnection) {
	p.clientsMutex.Lock()
	_, existed := p.clients[client.SubscriberID()]
	delete(p.clients, client.SubscriberID())
	p.clientsMutex.Unlock()

	if existed {
		pmClientsConnected.Dec()

		if p.ClientDisconnectedCallback != nil {
			go p.ClientDisconnectedCallback(client)
		}
	}
}

// Clients returns a snapshot slice of currently connected clients.
func (p *Publisher) Clients() []*ClientConnection {
	p.clientsMutex.RLock()
	defer p.clientsMutex.RUnlock()

	clients := make([]*ClientConnection, 0, len(p.clients))

	for _, client := range p.clients {
		clients = append(clients, client)
	}

	return clients
}

// PublishMeasurements fans measurements out to every subscribed client, filtering each client's
// copy against its own active subscription.
func (p *Publisher) PublishMeasurements(measurements []measurement.Measurement) {
	if len(measurements) == 0 {
		return
	}

	p.clientsMutex.RLock()
	defer p.clientsMutex.RUnlock()

	for _, client := range p.clients {
		client.PublishMeasurements(measurements)
	}

	pmMeasurementsPublished.Add(float64(len(measurements)))
}

// PublishBufferBlock delivers a raw, non-scalar buffer block to every client subscribed to signalID.
func (p *Publisher) PublishBufferBlock(signalID guid.Guid, data []byte) {
	p.clientsMutex.RLock()
	defer p.clientsMutex.RUnlock()

	for _, client := range p.clients {
		client.subscribedMutex.RLock()
		subscribed := client.subscribeAll || client.subscribed.Contains(signalID)
		client.subscribedMutex.RUnlock()

		if subscribed {
			client.PublishBufferBlock(signalID, data)
		}
	}
}

// buildSignalIndexCache constructs the cache a Subscribe response installs, resolving each
// requested signal ID against the MeasurementDetail table of the installed metadata. subscribeAll records the
// original filter expression matched every known row rather than an enumerated set.
func (p *Publisher) buildSignalIndexCache(signalIDs guid.HashSet, subscribeAll bool) *transport.SignalIndexCache {
	cache := transport.NewSignalIndexCache()

	table := func() *metadata.DataTable {
		p.metadataMutex.RLock()
		defer p.metadataMutex.RUnlock()

		if p.dataSet == nil {
			return nil
		}

		return p.dataSet.Table("MeasurementDetail")
	}()

	if table == nil {
		return cache
	}

	signalIDColumn := table.ColumnIndex("SignalID")
	sourceColumn := table.ColumnIndex("Source")
	idColumn := table.ColumnIndex("ID")
	pointTagColumn := table.ColumnIndex("PointTag")

	if signalIDColumn < 0 {
		return cache
	}

	var index uint16

	for i := 0; i < table.RowCount(); i++ {
		row := table.Row(i)

		if row == nil {
			continue
		}

		signalID, err := row.ValueAsGuid(signalIDColumn)

		if err != nil {
			continue
		}

		if !subscribeAll && !signalIDs.Contains(signalID) {
			continue
		}

		var source string
		var id uint64
		var charSizeEstimate uint32 = 32

		if sourceColumn >= 0 {
			source, _ = row.ValueAsString(sourceColumn)
		}

		if idColumn >= 0 {
			idValue, err := row.ValueAsInt64(idColumn)

			if err == nil {
				id = uint64(idValue)
			}
		}

		if pointTagColumn >= 0 {
			if tag, err := row.ValueAsString(pointTagColumn); err == nil {
				charSizeEstimate = uint32(len(tag))
			}
		}

		cache.AddRecord(index, signalID, source, id, charSizeEstimate)
		index++
	}

	return cache
}

// resolveInputMeasurementKeys resolves a Subscribe request's connection-string filter expression
// into the set of signal IDs it names. A literal GUID resolves to itself, a "FILTER ..." expression
// is evaluated against the installed metadata, and anything else is treated as a point tag. An
// empty expression returns subscribeAll=true, matching every currently known signal.
func (p *Publisher) resolveInputMeasurementKeys(expression string) (guid.HashSet, bool, error) {
	expression = strings.TrimSpace(expression)

	if expression == "" {
		return guid.NewHashSet(nil), true, nil
	}

	if signalID, ok := guid.TryParse(expression); ok {
		return guid.NewHashSet([]guid.Guid{signalID}), false, nil
	}

	if strings.HasPrefix(strings.ToUpper(expression), "FILTER") {
		dataSet := p.Metadata()

		if dataSet == nil {
			return guid.HashSet{}, false, errors.New("no metadata is currently available to evaluate filter expression")
		}

		statement, err := filter.ParseStatement(expression)

		if err != nil {
			return guid.HashSet{}, false, err
		}

		rows, err := filter.Evaluate(dataSet, statement)

		if err != nil {
			return guid.HashSet{}, false, err
		}

		signalIDs := make([]guid.Guid, 0, len(rows))

		for _, row := range rows {
			if signalID, err := row.ValueAsGuidByName("SignalID"); err == nil {
				signalIDs = append(signalIDs, signalID)
			}
		}

		return guid.NewHashSet(signalIDs), false, nil
	}

	signalIDs := make([]guid.Guid, 0)

	p.metadataMutex.RLock()

	for _, token := range strings.Split(expression, ";") {
		token = strings.ToUpper(strings.TrimSpace(token))

		if token == "" {
			continue
		}

		if signalID, ok := p.pointTagIndex[token]; ok {
			signalIDs = append(signalIDs, signalID)
		}
	}

	p.metadataMutex.RUnlock()

	return guid.NewHashSet(signalIDs), false, nil
}

func (p *Publisher) dispatchStatus(message string) {
	if p.StatusMessageCallback != nil {
		go p.StatusMessageCallback(message)
	}
}

func (p *Publisher) dispatchError(message string) {
	if p.ErrorMessageCallback != nil {
		go p.ErrorMessageCallback(message)
	}
}

// Close stops accepting new connections and disconnects every connected client.
func (p *Publisher) Close() error {
	p.stopOnce.Do(func() {
		close(p.stopChan)

		if p.cipherTicker != nil {
			p.cipherTicker.Stop()
		}

		if p.noopTicker != nil {
			p.noopTicker.Stop()
		}

		if p.listener != nil {
			p.listener.Close()
		}

		p.clientsMutex.RLock()
		clients := make([]*ClientConnection, 0, len(p.clients))

		for _, client := range p.clients {
			clients = append(clients, client)
		}

		p.clientsMutex.RUnlock()

		for _, client := range clients {
			client.Close()
		}
	})

	return nil
}
