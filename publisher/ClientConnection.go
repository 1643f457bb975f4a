//******************************************************************************************************
//  ClientConnection.go - Gbtc
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
//  07/31/2026 - Generated original version of source code, the publisher-side mirror of
//       subscriber/Session.go: every handler here is the encode-side reverse of one of that file's
//       decode-side handlers (sendOperationalModes/handleDefineOperationalModes,
//       SendMetadataRefresh/handleMetadataRefresh, Subscribe/handleSubscribe, and so on). No prior
//       counterpart exists since sttp-goapi never grew a DataPublisher.
//
//******************************************************************************************************

package publisher

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridstream/sttp/bytecodec"
	"github.com/gridstream/sttp/filter"
	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/stateflags"
	"github.com/gridstream/sttp/ticks"
	"github.com/gridstream/sttp/transport"
	"github.com/gridstream/sttp/transport/tssc"
	"github.com/tevino/abool/v2"
)

// ClientStateEnum defines the type for the ClientState enumeration.
type ClientStateEnum int32

// ClientState is an enumeration of the phases of a ClientConnection's lifecycle, per the
// accepted → modes-defined → (metadata-served)* → subscribed ⇄ unsubscribed → closed lifecycle.
// Metadata serving is a transient action available from ModesDefined onward rather than a state of
// its own.
var ClientState = struct {
	Accepted     ClientStateEnum
	ModesDefined ClientStateEnum
	Subscribed   ClientStateEnum
	Unsubscribed ClientStateEnum
	Closed       ClientStateEnum
}{
	Accepted:     0,
	ModesDefined: 1,
	Subscribed:   2,
	Unsubscribed: 3,
	Closed:       4,
}

// priorCacheRetireTimeout bounds how long a superseded signal index cache is kept alive awaiting
// ConfirmSignalIndexCache before the publisher retires it unconditionally.
const priorCacheRetireTimeout = 30 * time.Second

// tsscMaxBlockSize is the working buffer size handed to the TSSC encoder per data packet; it is
// kept under MaxPacketSize so a single block never needs to be split across DataPacket responses.
const tsscMaxBlockSize = int(transport.MaxPacketSize) - 256

// ClientConnection is a single subscriber's command-channel socket and per-client session state: the
// negotiated operational modes, the installed signal index cache, cipher and TSSC codec state, and
// the subscribed signal set, all private to the one goroutine that owns this connection.
type ClientConnection struct {
	publisher *Publisher
	conn      net.Conn

	subscriberID guid.Guid
	remoteAddr   string

	disposing abool.AtomicBool
	state     atomic.Int32

	writeMutex    sync.Mutex
	commandReader *transport.CommandFrameReader

	encoding         transport.Encoding
	operationalModes transport.OperationalModesEnum
	compressMetadata bool
	compressSIC      bool
	compressPayload  bool

	signalIndexCache      atomic.Pointer[transport.SignalIndexCache]
	priorSignalIndexCache atomic.Pointer[transport.SignalIndexCache]
	priorCacheMutex       sync.Mutex
	priorCacheTimer       *time.Timer

	baseTimeMutex      sync.RWMutex
	baseTimeOffsets    [2]int64
	baseTimeIndex      uint32
	useBaseTimeOffsets bool

	cipherMutex   sync.RWMutex
	cipherTable   *transport.CipherKeyTable
	cipherEnabled bool

	tsscMutex    sync.Mutex
	tsscEncoder  *tssc.Encoder
	tsscSequence uint16

	udpConn *net.UDPConn

	bufferBlockSender *BufferBlockSender

	registry *measurement.Registry

	subscribedMutex     sync.RWMutex
	subscribed          guid.HashSet
	subscribeAll        bool
	request             *subscriptionRequest
	includeTime         bool
	useMillisecondTicks bool
	processingInterval  int32

	dataStartSent atomic.Bool

	// StatusMessageCallback is called with informational status text for this client.
	StatusMessageCallback func(string)
	// ErrorMessageCallback is called with error text for this client.
	ErrorMessageCallback func(string)
	// NewMeasurementsCallback is called with measurements the client published back over the command
	// channel via PublishCommandMeasurements.
	NewMeasurementsCallback func([]measurement.Measurement)
}

func newClientConnection(publisher *Publisher, conn net.Conn) *ClientConnection {
	client := &ClientConnection{
		publisher:     publisher,
		conn:          conn,
		subscriberID:  guid.New(),
		remoteAddr:    conn.RemoteAddr().String(),
		commandReader: transport.NewCommandFrameReader(),
		registry:      measurement.NewRegistry(),
	}

	client.state.Store(int32(ClientState.Accepted))

	client.bufferBlockSender = NewBufferBlockSender(
		time.Duration(publisher.config.BufferBlockRetransmitTimeout)*time.Millisecond,
		5,
		client.sendBufferBlock,
		client.giveUpBufferBlock,
	)

	return client
}

// State returns the client's current lifecycle state.
func (c *ClientConnection) State() ClientStateEnum {
	return ClientStateEnum(c.state.Load())
}

// SubscriberID returns the Guid this publisher assigned the client at accept time, also stamped
// into every signal index cache sent to it.
func (c *ClientConnection) SubscriberID() guid.Guid {
	return c.subscriberID
}

// RemoteAddr returns the client's remote network address.
func (c *ClientConnection) RemoteAddr() string {
	return c.remoteAddr
}

// run is the per-client read loop; it returns once the connection is closed, local or remote.
func (c *ClientConnection) run() {
	buffer := make([]byte, 64*1024)

	for {
		n, err := c.conn.Read(buffer)

		if n > 0 {
			frames, feedErr := c.commandReader.Feed(buffer[:n])

			for _, frame := range frames {
				pmFramesReceived.Inc()
				c.dispatch(frame)
			}

			if feedErr != nil {
				pmParseErrors.Inc()
				c.dispatchError("Frame reassembly error: " + feedErr.Error())
				c.Close()
				return
			}
		}

		if err != nil {
			c.Close()
			return
		}
	}
}

// Close tears down the client's command channel and any UDP data channel, cancels outstanding
// buffer-block retransmit timers, and notifies the owning Publisher to drop it from the registry.
func (c *ClientConnection) Close() {
	if c.disposing.IsSet() {
		return
	}

	c.disposing.Set()
	c.state.Store(int32(ClientState.Closed))

	c.conn.Close()

	if c.udpConn != nil {
		c.udpConn.Close()
	}

	c.bufferBlockSender.Reset()

	c.priorCacheMutex.Lock()
	if c.priorCacheTimer != nil {
		c.priorCacheTimer.Stop()
	}
	c.priorCacheMutex.Unlock()

	c.publisher.removeClient(c)
}

func (c *ClientConnection) dispatch(frame transport.CommandFrame) {
	if frame.Command != transport.ServerCommand.DefineOperationalModes && c.State() == ClientState.Accepted {
		c.sendFailed(frame.Command, "DefineOperationalModes must be the first command sent")
		return
	}

	switch frame.Command {
	case transport.ServerCommand.DefineOperationalModes:
		c.handleDefineOperationalModes(frame.Payload)
	case transport.ServerCommand.MetadataRefresh:
		c.handleMetadataRefresh(frame.Payload)
	case transport.ServerCommand.Subscribe:
		c.handleSubscribe(frame.Payload)
	case transport.ServerCommand.Unsubscribe:
		c.handleUnsubscribe()
	case transport.ServerCommand.RotateCipherKeys:
		c.handleRotateCipherKeys()
	case transport.ServerCommand.UpdateProcessingInterval:
		c.handleUpdateProcessingInterval(frame.Payload)
	case transport.ServerCommand.ConfirmNotification:
		// No action required; receipt alone closes the notification loop.
	case transport.ServerCommand.ConfirmBufferBlock:
		c.handleConfirmBufferBlock(frame.Payload)
	case transport.ServerCommand.PublishCommandMeasurements:
		c.handlePublishCommandMeasurements(frame.Payload)
	case transport.ServerCommand.ConfirmSignalIndexCache:
		c.handleConfirmSignalIndexCache()
	default:
		c.sendFailed(frame.Command, "unrecognized command code 0x"+strconv.FormatUint(uint64(frame.Command), 16))
	}
}

func (c *ClientConnection) handleDefineOperationalModes(payload []byte) {
	if len(payload) < 4 {
		c.sendFailed(transport.ServerCommand.DefineOperationalModes, "payload too short")
		return
	}

	raw, err := bytecodec.UInt32(payload)

	if err != nil {
		c.sendFailed(transport.ServerCommand.DefineOperationalModes, err.Error())
		return
	}

	modes := transport.OperationalModesEnum(raw)

	if version := byte(modes & transport.OperationalModes.VersionMask); version != c.publisher.config.Version {
		c.dispatchStatus("Client requested protocol version " + strconv.Itoa(int(version)) + ", expected " +
			strconv.Itoa(int(c.publisher.config.Version)) + "; continuing.")
	}

	c.operationalModes = modes
	c.encoding = transport.NewEncoding(transport.OperationalEncodingEnum(modes & transport.OperationalModes.EncodingMask))
	c.compressMetadata = modes&transport.OperationalModes.CompressMetadata != 0
	c.compressSIC = modes&transport.OperationalModes.CompressSignalIndexCache != 0
	c.compressPayload = modes&transport.OperationalModes.CompressPayloadData != 0
	c.useBaseTimeOffsets = c.publisher.config.UseBaseTimeOffsets

	c.state.Store(int32(ClientState.ModesDefined))

	c.sendSucceeded(transport.ServerCommand.DefineOperationalModes, "Operational modes accepted.")
	c.dispatchStatus("Accepted connection from " + transport.ResolveDNSName(c.remoteAddr) + ".")
}

func (c *ClientConnection) handleMetadataRefresh(payload []byte) {
	var filterExpression string

	if len(payload) >= 4 {
		length, err := bytecodec.UInt32(payload[:4])

		if err == nil && uint32(len(payload)) >= 4+length {
			filterExpression = c.encoding.DecodeString(payload[4 : 4+length])
		}
	}

	dataSet := c.publisher.Metadata()

	if dataSet == nil {
		c.sendFailed(transport.ServerCommand.MetadataRefresh, "no metadata is currently available")
		return
	}

	resultSet := dataSet

	if filterExpression != "" {
		statements, err := filter.ParseStatements(filterExpression)

		if err != nil {
			c.sendFailed(transport.ServerCommand.MetadataRefresh, "failed to parse filter expression: "+err.Error())
			return
		}

		filtered, err := filter.EvaluateAll(dataSet, statements)

		if err != nil {
			c.sendFailed(transport.ServerCommand.MetadataRefresh, "failed to evaluate filter expression: "+err.Error())
			return
		}

		resultSet = filtered
	}

	xmlBytes := resultSet.WriteXml("DataSet")

	if c.compressMetadata {
		compressed, err := transport.CompressGZip(xmlBytes)

		if err != nil {
			c.sendFailed(transport.ServerCommand.MetadataRefresh, "failed to compress metadata: "+err.Error())
			return
		}

		xmlBytes = compressed
	}

	c.sendResponse(transport.ServerResponse.Succeeded, transport.ServerCommand.MetadataRefresh, xmlBytes)
}

func (c *ClientConnection) handleSubscribe(payload []byte) {
	if len(payload) < 5 {
		c.sendFailed(transport.ServerCommand.Subscribe, "payload too short")
		return
	}

	flags := transport.DataPacketFlagsEnum(payload[0])

	length, err := bytecodec.UInt32(payload[1:5])

	if err != nil || uint32(len(payload)) < 5+length {
		c.sendFailed(transport.ServerCommand.Subscribe, "malformed connection string length")
		return
	}

	connectionString := c.encoding.DecodeString(payload[5 : 5+length])
	request := parseSubscriptionRequest(connectionString)
	c.request = request
	c.includeTime = request.IncludeTime
	c.useMillisecondTicks = request.UseMillisecondResolution
	c.processingInterval = request.ProcessingInterval

	signalIDs, subscribeAll, err := c.publisher.resolveInputMeasurementKeys(request.FilterExpression)

	if err != nil {
		c.sendFailed(transport.ServerCommand.Subscribe, "failed to resolve requested measurements: "+err.Error())
		return
	}

	c.subscribedMutex.Lock()
	c.subscribed = signalIDs
	c.subscribeAll = subscribeAll
	c.subscribedMutex.Unlock()

	newCache := c.publisher.buildSignalIndexCache(signalIDs, subscribeAll)

	c.priorCacheMutex.Lock()

	if current := c.signalIndexCache.Load(); current != nil {
		c.priorSignalIndexCache.Store(current)

		if c.priorCacheTimer != nil {
			c.priorCacheTimer.Stop()
		}

		c.priorCacheTimer = time.AfterFunc(priorCacheRetireTimeout, func() {
			c.priorSignalIndexCache.Store(nil)
		})
	}

	c.priorCacheMutex.Unlock()

	c.signalIndexCache.Store(newCache)

	if request.UdpPort != 0 {
		if err := c.openDataChannel(request.UdpPort); err != nil {
			c.dispatchError("Failed to open UDP data channel, falling back to command channel: " + err.Error())
		}
	} else if c.udpConn != nil {
		c.udpConn.Close()
		c.udpConn = nil
	}

	c.compressPayload = flags&transport.DataPacketFlags.Compressed != 0

	if c.useBaseTimeOffsets {
		c.baseTimeMutex.Lock()
		c.baseTimeOffsets = [2]int64{int64(ticks.FromTime(time.Now())), 0}
		c.baseTimeIndex = 0
		c.baseTimeMutex.Unlock()
	}

	c.bufferBlockSender.Reset()
	c.dataStartSent.Store(false)

	c.tsscMutex.Lock()
	c.tsscEncoder = nil
	c.tsscSequence = 0
	c.tsscMutex.Unlock()

	c.state.Store(int32(ClientState.Subscribed))

	c.sendSucceeded(transport.ServerCommand.Subscribe, "Subscription accepted.")

	encodedCache := newCache.Encode(c.encoding, c.subscriberID)

	if c.compressSIC {
		if compressed, err := transport.CompressGZip(encodedCache); err == nil {
			encodedCache = compressed
		}
	}

	c.sendResponse(transport.ServerResponse.UpdateSignalIndexCache, 0, encodedCache)

	if c.useBaseTimeOffsets {
		c.baseTimeMutex.RLock()
		payload := buildBaseTimesPayload(c.baseTimeIndex, c.baseTimeOffsets)
		c.baseTimeMutex.RUnlock()

		c.sendResponse(transport.ServerResponse.UpdateBaseTimes, 0, payload)
	}

	if c.isCipherEnabled() {
		table := c.cipherTableOrCreate()
		c.sendCipherKeys(table.ActiveIndex(), table.ActivePair())
	}
}

func (c *ClientConnection) handleUnsubscribe() {
	c.subscribedMutex.Lock()
	c.subscribed = nil
	c.subscribeAll = false
	c.subscribedMutex.Unlock()

	c.state.Store(int32(ClientState.Unsubscribed))

	if c.udpConn != nil {
		c.udpConn.Close()
		c.udpConn = nil
	}

	c.bufferBlockSender.Reset()

	c.sendSucceeded(transport.ServerCommand.Unsubscribe, "Unsubscribed.")
}

func (c *ClientConnection) handleRotateCipherKeys() {
	table := c.cipherTableOrCreate()

	index, pair, err := table.Rotate()

	if err != nil {
		c.sendFailed(transport.ServerCommand.RotateCipherKeys, "failed to rotate cipher keys: "+err.Error())
		return
	}

	c.cipherMutex.Lock()
	c.cipherEnabled = true
	c.cipherMutex.Unlock()

	pmCipherRotations.Inc()

	c.sendCipherKeys(index, pair)
	c.sendSucceeded(transport.ServerCommand.RotateCipherKeys, "Cipher keys rotated.")
}

func (c *ClientConnection) handleUpdateProcessingInterval(payload []byte) {
	if len(payload) < 4 {
		c.sendFailed(transport.ServerCommand.UpdateProcessingInterval, "payload too short")
		return
	}

	value, err := bytecodec.Int32(payload[:4])

	if err != nil {
		c.sendFailed(transport.ServerCommand.UpdateProcessingInterval, err.Error())
		return
	}

	c.processingInterval = value
	c.sendSucceeded(transport.ServerCommand.UpdateProcessingInterval, "Processing interval updated.")
}

func (c *ClientConnection) handleConfirmBufferBlock(payload []byte) {
	if len(payload) < 4 {
		return
	}

	seq, err := bytecodec.UInt32(payload[:4])

	if err != nil {
		return
	}

	c.bufferBlockSender.Acknowledge(seq)
}

// handlePublishCommandMeasurements decodes measurements a client injects back over the command
// channel. Since no signal index cache governs this direction, each entry carries its full signal
// ID rather than a compact runtime index: [signalID:16][timestamp:8][value:8][flags:4] repeating.
func (c *ClientConnection) handlePublishCommandMeasurements(payload []byte) {
	const entrySize = 16 + 8 + 8 + 4

	var measurements []measurement.Measurement

	for offset := 0; offset+entrySize <= len(payload); offset += entrySize {
		signalID, err := bytecodec.Guid(payload[offset:])

		if err != nil {
			break
		}

		timestamp, _ := bytecodec.UInt64(payload[offset+16:])
		value, _ := bytecodec.Float64(payload[offset+24:])
		flags, _ := bytecodec.UInt32(payload[offset+32:])

		measurements = append(measurements, measurement.Measurement{
			SignalID:  signalID,
			Value:     value,
			Timestamp: ticks.Ticks(timestamp),
			Flags:     stateflags.StateFlags(flags),
		})
	}

	if len(measurements) == 0 {
		c.sendFailed(transport.ServerCommand.PublishCommandMeasurements, "no measurements could be parsed")
		return
	}

	if c.NewMeasurementsCallback != nil {
		c.NewMeasurementsCallback(measurements)
	}

	c.sendSucceeded(transport.ServerCommand.PublishCommandMeasurements, strconv.Itoa(len(measurements))+" measurements received.")
}

func (c *ClientConnection) handleConfirmSignalIndexCache() {
	c.priorCacheMutex.Lock()
	defer c.priorCacheMutex.Unlock()

	if c.priorCacheTimer != nil {
		c.priorCacheTimer.Stop()
		c.priorCacheTimer = nil
	}

	c.priorSignalIndexCache.Store(nil)
}

func (c *ClientConnection) openDataChannel(port uint16) error {
	host, _, err := net.SplitHostPort(c.remoteAddr)

	if err != nil {
		host = c.remoteAddr
	}

	addr := &net.UDPAddr{IP: net.ParseIP(host), Port: int(port)}
	conn, err := net.DialUDP("udp", nil, addr)

	if err != nil {
		return err
	}

	if c.udpConn != nil {
		c.udpConn.Close()
	}

	c.udpConn = conn

	return nil
}

func (c *ClientConnection) cipherTableOrCreate() *transport.CipherKeyTable {
	c.cipherMutex.Lock()
	defer c.cipherMutex.Unlock()

	if c.cipherTable == nil {
		table, err := transport.NewCipherKeyTable()

		if err == nil {
			c.cipherTable = table
		}
	}

	return c.cipherTable
}

func (c *ClientConnection) isCipherEnabled() bool {
	c.cipherMutex.RLock()
	defer c.cipherMutex.RUnlock()

	return c.cipherEnabled
}

func (c *ClientConnection) sendCipherKeys(index uint32, pair transport.CipherKeyPair) {
	payload := buildCipherKeysPayload(index, pair)
	c.sendResponse(transport.ServerResponse.UpdateCipherKeys, 0, payload)
}

// buildBaseTimesPayload matches the 17-byte layout subscriber.Session.handleUpdateBaseTimes decodes:
// a 1-byte active index followed by two 8-byte tick offsets.
func buildBaseTimesPayload(index uint32, offsets [2]int64) []byte {
	payload := make([]byte, 17)
	payload[0] = byte(index)
	bytecodec.PutInt64(payload[1:9], offsets[0])
	bytecodec.PutInt64(payload[9:17], offsets[1])

	return payload
}

// buildCipherKeysPayload matches the layout subscriber.Session.handleUpdateCipherKeys decodes: a
// 1-byte active index, then the key and IV, each length-prefixed.
func buildCipherKeysPayload(index uint32, pair transport.CipherKeyPair) []byte {
	payload := make([]byte, 1+4+len(pair.Key)+4+len(pair.IV))
	payload[0] = byte(index)

	offset := 1
	bytecodec.PutUInt32(payload[offset:offset+4], uint32(len(pair.Key)))
	offset += 4
	copy(payload[offset:], pair.Key)
	offset += len(pair.Key)

	bytecodec.PutUInt32(payload[offset:offset+4], uint32(len(pair.IV)))
	offset += 4
	copy(payload[offset:], pair.IV)

	return payload
}

// PublishMeasurements filters measurements against the client's current subscription and encodes
// and sends whatever subset matches, using TSSC when negotiated or the plain compact codec otherwise.
// A client with no active signal index cache (not yet subscribed) is silently skipped.
func (c *ClientConnection) PublishMeasurements(measurements []measurement.Measurement) {
	if c.State() != ClientState.Subscribed {
		return
	}

	cache := c.signalIndexCache.Load()

	if cache == nil {
		return
	}

	matched := c.filterSubscribed(measurements)

	if len(matched) == 0 {
		return
	}

	if !c.dataStartSent.Swap(true) {
		c.sendDataStartTime(matched[0].Timestamp)
	}

	if c.compressPayload {
		c.publishTSSC(matched, cache)
		return
	}

	c.publishCompact(matched, cache)
}

func (c *ClientConnection) filterSubscribed(measurements []measurement.Measurement) []measurement.Measurement {
	c.subscribedMutex.RLock()
	defer c.subscribedMutex.RUnlock()

	if c.subscribeAll {
		return measurements
	}

	if len(c.subscribed) == 0 {
		return nil
	}

	matched := make([]measurement.Measurement, 0, len(measurements))

	for _, m := range measurements {
		if c.subscribed.Contains(m.SignalID) {
			matched = append(matched, m)
		}
	}

	return matched
}

func (c *ClientConnection) sendDataStartTime(timestamp ticks.Ticks) {
	payload := make([]byte, 8)
	bytecodec.PutUInt64(payload, uint64(timestamp))
	c.sendResponse(transport.ServerResponse.DataStartTime, 0, payload)
}

func (c *ClientConnection) publishCompact(measurements []measurement.Measurement, cache *transport.SignalIndexCache) {
	var body []byte

	c.baseTimeMutex.RLock()
	offsets := c.baseTimeOffsets
	c.baseTimeMutex.RUnlock()

	for _, m := range measurements {
		signalIndex, ok := cache.SignalIndex(m.SignalID)

		if !ok {
			continue
		}

		cm := transport.CompactMeasurement{Value: m.Value, Timestamp: m.Timestamp, SignalIndex: signalIndex}
		cm.Flags, cm.Options = transport.NewCompactFlags(m.Flags, transport.LossyRoundTrip(m.Value))

		if c.useBaseTimeOffsets && c.includeTime {
			offset := int64(m.Timestamp) - offsets[0]
			limit := int64(^uint32(0))

			if c.useMillisecondTicks {
				limit = int64(^uint16(0))*int64(ticks.PerMillisecond) + int64(ticks.PerMillisecond) - 1
			}

			// Offsets outside the 2- or 4-byte window fall back to a full 8-byte timestamp.
			if offsets[0] > 0 && offset >= 0 && offset <= limit {
				cm.SetBaseTimeOffsetFlags(0)
			}
		}

		record := make([]byte, cm.MarshalSize())
		cm.Marshal(record)
		body = append(body, record...)

		if c.includeTime {
			timeField := make([]byte, cm.TimeSize(c.useMillisecondTicks))
			cm.MarshalTime(timeField, c.useMillisecondTicks, &offsets)
			body = append(body, timeField...)
		}
	}

	if len(body) == 0 {
		return
	}

	c.sendDataPacket(transport.DataPacketFlags.Compact, body)
}

func (c *ClientConnection) publishTSSC(measurements []measurement.Measurement, cache *transport.SignalIndexCache) {
	c.tsscMutex.Lock()
	defer c.tsscMutex.Unlock()

	if c.tsscEncoder == nil {
		c.tsscEncoder = tssc.NewEncoder(uint32(cache.MaxSignalIndex()) + 1)
		c.tsscSequence = 0
		c.sendTSSCFrame(nil)
	}

	buffer := make([]byte, tsscMaxBlockSize)
	c.tsscEncoder.SetBuffer(buffer)

	for _, m := range measurements {
		signalIndex, ok := cache.SignalIndex(m.SignalID)

		if !ok {
			continue
		}

		added, err := c.tsscEncoder.TryAddMeasurement(int32(signalIndex), int64(m.Timestamp), uint32(m.Flags), float32(m.Value))

		if err != nil {
			c.dispatchError("TSSC encode failure, resetting stream: " + err.Error())
			c.tsscEncoder = tssc.NewEncoder(uint32(cache.MaxSignalIndex()) + 1)
			c.sendTSSCFrame(nil)
			buffer = make([]byte, tsscMaxBlockSize)
			c.tsscEncoder.SetBuffer(buffer)
			continue
		}

		if added {
			continue
		}

		c.flushTSSCBuffer(buffer)

		buffer = make([]byte, tsscMaxBlockSize)
		c.tsscEncoder.SetBuffer(buffer)

		if _, err := c.tsscEncoder.TryAddMeasurement(int32(signalIndex), int64(m.Timestamp), uint32(m.Flags), float32(m.Value)); err != nil {
			c.dispatchError("TSSC encode failure after flush: " + err.Error())
		}
	}

	c.flushTSSCBuffer(buffer)
}

func (c *ClientConnection) flushTSSCBuffer(buffer []byte) {
	length, err := c.tsscEncoder.FinishBlock()

	if err != nil {
		c.dispatchError("TSSC block finalize failure: " + err.Error())
		return
	}

	if length == 0 {
		return
	}

	c.sendTSSCFrame(buffer[:length])
}

// sendTSSCFrame wraps a TSSC-compressed block (or, with data == nil, an empty reset block) in the
// [version][sequence] header the stream-level contract requires and sends it as a DataPacket.
// Sequence numbers wrap 1..65535, skipping 0, which is reserved to signal a decoder reset.
func (c *ClientConnection) sendTSSCFrame(data []byte) {
	if data == nil {
		c.tsscSequence = 0
	} else {
		c.tsscSequence++

		if c.tsscSequence == 0 {
			c.tsscSequence = 1
		}
	}

	header := make([]byte, 3+len(data))
	header[0] = transport.TsscVersion
	bytecodec.PutUInt16(header[1:3], c.tsscSequence)
	copy(header[3:], data)

	c.sendDataPacket(transport.DataPacketFlags.Compressed, header)
}

func (c *ClientConnection) sendDataPacket(flags transport.DataPacketFlagsEnum, body []byte) {
	if c.isCipherEnabled() {
		table := c.cipherTableOrCreate()
		index := table.ActiveIndex()
		pair := table.Pair(index)

		encrypted, err := transport.EncryptPayload(pair, body)

		if err != nil {
			c.dispatchError("Failed to encrypt data packet: " + err.Error())
			return
		}

		body = encrypted

		if index%2 != 0 {
			flags |= transport.DataPacketFlags.CipherIndex
		}
	}

	payload := make([]byte, 1+len(body))
	payload[0] = byte(flags)
	copy(payload[1:], body)

	c.sendOnDataChannel(payload)
}

// sendOnDataChannel writes a framed DataPacket response either to the command channel or, when a
// UDP data channel was negotiated, directly to the subscriber's UDP endpoint.
func (c *ClientConnection) sendOnDataChannel(payload []byte) {
	frame := transport.EncodeResponse(transport.ServerResponse.DataPacket, 0, payload)

	if c.udpConn != nil {
		if _, err := c.udpConn.Write(frame); err == nil {
			pmFramesSent.Inc()
			return
		}
	}

	c.writeFrame(frame)
}

func (c *ClientConnection) sendBufferBlock(seq uint32, signalID guid.Guid, block []byte) {
	payload := make([]byte, 4+2+len(block))
	bytecodec.PutUInt32(payload[0:4], seq)

	cache := c.signalIndexCache.Load()
	var signalIndex uint16

	if cache != nil {
		signalIndex, _ = cache.SignalIndex(signalID)
	}

	bytecodec.PutUInt16(payload[4:6], signalIndex)
	copy(payload[6:], block)

	c.sendResponse(transport.ServerResponse.BufferBlock, 0, payload)
}

func (c *ClientConnection) giveUpBufferBlock(seq uint32) {
	c.dispatchError("Buffer block " + strconv.FormatUint(uint64(seq), 10) + " exceeded retransmit attempts; abandoning.")
}

// PublishBufferBlock enqueues a raw, non-scalar buffer block for reliable delivery to this client.
func (c *ClientConnection) PublishBufferBlock(signalID guid.Guid, data []byte) {
	if c.State() != ClientState.Subscribed {
		return
	}

	c.bufferBlockSender.Send(signalID, data)
}

// Notify sends an unsolicited notification message, awaiting the client's ConfirmNotification.
func (c *ClientConnection) Notify(message string) {
	c.sendResponse(transport.ServerResponse.Notify, 0, c.encoding.EncodeString(message))
}

// SendConfigurationChanged informs the client that the publisher's source metadata has changed.
func (c *ClientConnection) SendConfigurationChanged() {
	c.sendResponse(transport.ServerResponse.ConfigurationChanged, 0, nil)
}

// sendNoOp transmits a keep-alive ping; called periodically by the Publisher's scheduler so a quiet
// command channel does not appear to have stalled.
func (c *ClientConnection) sendNoOp() {
	c.sendResponse(transport.ServerResponse.NoOP, 0, nil)
}

func (c *ClientConnection) sendSucceeded(command transport.ServerCommandEnum, message string) {
	c.sendResponse(transport.ServerResponse.Succeeded, command, c.encoding.EncodeString(message))
}

// sendFailed writes the raw message bytes rather than going through Encoding.EncodeString, since
// Failed can be sent before DefineOperationalModes has negotiated an encoding.
func (c *ClientConnection) sendFailed(command transport.ServerCommandEnum, message string) {
	c.sendResponse(transport.ServerResponse.Failed, command, []byte(message))
	c.dispatchError("Command " + strconv.Itoa(int(command)) + " failed: " + message)
}

func (c *ClientConnection) sendResponse(responseCode transport.ServerResponseEnum, inResponseTo transport.ServerCommandEnum, payload []byte) {
	c.writeFrame(transport.EncodeResponse(responseCode, inResponseTo, payload))
}

func (c *ClientConnection) writeFrame(frame []byte) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	_, err := c.conn.Write(frame)

	if err != nil {
		return err
	}

	pmFramesSent.Inc()

	return nil
}

func (c *ClientConnection) dispatchStatus(message string) {
	if c.StatusMessageCallback != nil {
		go c.StatusMessageCallback(message)
	}
}

func (c *ClientConnection) dispatchError(message string) {
	if c.ErrorMessageCallback != nil {
		go c.ErrorMessageCallback(message)
	}
}
