//******************************************************************************************************
//  Session.go - Gbtc
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
//  07/31/2026 - Generated original version of source code. sttp/transport/DataSubscriber is a 45-line
//       stub that SubscriberConnector calls into (connect, disposing, IsConnected, AutoReconnectCallback)
//       without ever defining those members; this Session supplies the missing engine those calls
//       assume (atomic state flags, mutex-guarded callback reassignment, atomic pointer-swap for
//       hot-path shared state).
//
//******************************************************************************************************

package subscriber

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridstream/sttp/bytecodec"
	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/metadata"
	"github.com/gridstream/sttp/stateflags"
	"github.com/gridstream/sttp/ticks"
	"github.com/gridstream/sttp/transport"
	"github.com/gridstream/sttp/transport/tssc"
	"github.com/tevino/abool/v2"
)

// StateEnum defines the type for the State enumeration.
type StateEnum int32

// State is an enumeration of the phases of a Session's lifecycle, per the disconnected → connecting →
// connected → modes-sent → (metadata-pending)? → subscribed ⇄ unsubscribed → disconnected lifecycle.
var State = struct {
	Disconnected    StateEnum
	Connecting      StateEnum
	Connected       StateEnum
	ModesSent       StateEnum
	MetadataPending StateEnum
	Subscribed      StateEnum
	Unsubscribed    StateEnum
}{
	Disconnected:    0,
	Connecting:      1,
	Connected:       2,
	ModesSent:       3,
	MetadataPending: 4,
	Subscribed:      5,
	Unsubscribed:    6,
}

type cipherSlot struct {
	pair transport.CipherKeyPair
	set  bool
}

// Session is a single client-side connection to a publisher: the command channel socket, the
// negotiated operational state, and the dispatch loop that turns framed responses into callbacks.
type Session struct {
	config   *Config
	settings *Settings

	disposing abool.AtomicBool
	connected abool.AtomicBool
	state     atomic.Int32

	conn           net.Conn
	udpConn        *net.UDPConn
	writeMutex     sync.Mutex
	responseReader *transport.ResponseFrameReader

	encoding          transport.Encoding
	operationalModes  transport.OperationalModesEnum
	compressMetadata  bool
	compressSIC       bool
	compressPayload   bool

	signalIndexCache atomic.Pointer[transport.SignalIndexCache]
	subscriberID     guid.Guid

	baseTimeMutex  sync.RWMutex
	baseTimeOffset [2]int64
	baseTimeIndex  uint32

	cipherMutex   sync.RWMutex
	cipherSlots   [2]cipherSlot
	cipherActive  uint32
	cipherEnabled bool

	tsscMutex      sync.Mutex
	tsscDecoder    *tssc.Decoder
	tsscResetNeeded bool

	bufferBlocks *transport.BufferBlockQueue
	registry     *measurement.Registry

	watchdog     *dataLossWatchdog
	parseFailure *parseExceptionTracker

	autoReconnectCallback func(*Session)

	assigningHandlerMutex sync.RWMutex

	// StatusMessageCallback is called with informational status text.
	StatusMessageCallback func(string)
	// ErrorMessageCallback is called with error text.
	ErrorMessageCallback func(string)
	// ConnectionTerminatedCallback is called when the connection is lost, before any auto-reconnect.
	ConnectionTerminatedCallback func(*Session)
	// MetadataReceivedCallback is called with a parsed metadata set after MetadataRefresh completes.
	MetadataReceivedCallback func(*metadata.DataSet)
	// NewMeasurementsCallback is called with each batch of measurements a DataPacket carries.
	NewMeasurementsCallback func([]measurement.Measurement)
	// NewBufferBlocksCallback is called with each batch of in-order buffer blocks.
	NewBufferBlocksCallback func([]measurement.BufferBlock)
	// ConfigurationChangedCallback is called when the publisher reports its metadata has changed.
	ConfigurationChangedCallback func()
	// NotificationReceivedCallback is called with a publisher notification message.
	NotificationReceivedCallback func(string)
	// ProcessingCompleteCallback is called when a historical playback subscription finishes.
	ProcessingCompleteCallback func(string)
}

// NewSession creates a Session using config, or the package defaults when config is nil.
func NewSession(config *Config) *Session {
	if config == nil {
		config = NewConfig()
	}

	session := &Session{
		config:       config,
		bufferBlocks: transport.NewBufferBlockQueue(),
		registry:     measurement.NewRegistry(),
	}

	session.state.Store(int32(State.Disconnected))

	session.watchdog = newDataLossWatchdog(
		time.Duration(config.DataLossInterval*float64(time.Second)),
		session.handleDataLoss,
	)

	session.parseFailure = newParseExceptionTracker(
		config.ParseExceptionThreshold,
		time.Duration(config.ParseExceptionWindow*float64(time.Second)),
		session.handleParseExceptionThreshold,
	)

	return session
}

// State returns the Session's current lifecycle state.
func (s *Session) State() StateEnum {
	return StateEnum(s.state.Load())
}

func (s *Session) setState(state StateEnum) {
	s.state.Store(int32(state))
}

// IsConnected reports whether the command channel socket is currently established.
func (s *Session) IsConnected() bool {
	return s.connected.IsSet()
}

// connect dials the publisher, performs the operational-modes handshake, and starts the read loop.
// autoReconnecting is forwarded only for status-message phrasing parity with Connector.
func (s *Session) connect(host string, port uint16, autoReconnecting bool) error {
	s.setState(State.Connecting)

	address := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := net.DialTimeout("tcp", address, 10*time.Second)

	if err != nil {
		return err
	}

	s.conn = conn
	s.responseReader = transport.NewResponseFrameReader()
	s.signalIndexCache.Store(nil)
	s.bufferBlocks.Reset()
	s.registry.Clear()
	s.parseFailure.Reset()

	s.baseTimeMutex.Lock()
	s.baseTimeOffset = [2]int64{}
	s.baseTimeIndex = 0
	s.baseTimeMutex.Unlock()

	s.tsscMutex.Lock()
	s.tsscDecoder = nil
	s.tsscResetNeeded = false
	s.tsscMutex.Unlock()

	s.connected.Set()
	s.setState(State.Connected)

	go s.readLoop()

	if err := s.sendOperationalModes(); err != nil {
		s.Disconnect()
		return err
	}

	s.setState(State.ModesSent)

	s.dispatchStatusMessage(fmt.Sprintf("Connected to %q.", address))

	if s.config.AutoRequestMetadata {
		s.setState(State.MetadataPending)

		if err := s.SendMetadataRefresh(s.config.MetadataFilters); err != nil {
			s.dispatchErrorMessage("Failed to request metadata: " + err.Error())
		}
	} else if s.config.AutoSubscribe && s.settings != nil {
		if err := s.Subscribe(s.settings); err != nil {
			s.dispatchErrorMessage("Failed to auto-subscribe: " + err.Error())
		}
	}

	return nil
}

// Disconnect tears down the command channel (and any UDP data channel) without canceling future
// reconnect attempts; use Connector.Cancel for that.
func (s *Session) Disconnect() {
	if s.disposing.IsSet() {
		return
	}

	wasConnected := s.connected.IsSet()
	s.connected.UnSet()
	s.setState(State.Disconnected)
	s.watchdog.Stop()

	if s.conn != nil {
		s.conn.Close()
	}

	if s.udpConn != nil {
		s.udpConn.Close()
		s.udpConn = nil
	}

	if wasConnected {
		s.BeginCallbackSync()

		if s.ConnectionTerminatedCallback != nil {
			s.ConnectionTerminatedCallback(s)
		}

		s.EndCallbackSync()

		if autoReconnect := s.autoReconnectCallback; autoReconnect != nil {
			go autoReconnect(s)
		}
	}
}

// Dispose permanently shuts down the Session; no further reconnect attempts will occur.
func (s *Session) Dispose() {
	s.disposing.Set()
	s.connected.UnSet()
	s.watchdog.Stop()

	if s.conn != nil {
		s.conn.Close()
	}

	if s.udpConn != nil {
		s.udpConn.Close()
	}
}

func (s *Session) sendOperationalModes() error {
	modes := transport.OperationalModesEnum(s.config.Version) & transport.OperationalModes.VersionMask
	modes |= transport.OperationalModesEnum(transport.OperationalEncoding.UTF8)
	modes |= transport.OperationalModes.ReceiveInternalMetadata

	if s.config.CompressMetadata {
		modes |= transport.OperationalModes.CompressMetadata
	}

	if s.config.CompressSignalIndexCache {
		modes |= transport.OperationalModes.CompressSignalIndexCache
	}

	if s.config.CompressPayloadData {
		modes |= transport.OperationalModes.CompressPayloadData | transport.OperationalModesEnum(transport.CompressionModes.TSSC)
	}

	s.operationalModes = modes
	s.encoding = transport.NewEncoding(transport.OperationalEncoding.UTF8)
	s.compressMetadata = s.config.CompressMetadata
	s.compressSIC = s.config.CompressSignalIndexCache
	s.compressPayload = s.config.CompressPayloadData

	payload := make([]byte, 4)
	bytecodec.PutUInt32(payload, uint32(modes))

	return s.sendCommand(transport.ServerCommand.DefineOperationalModes, payload)
}

// SendMetadataRefresh requests the publisher's metadata, optionally narrowed by a ";"-separated list
// of "FILTER <table> WHERE <predicate>" expressions.
func (s *Session) SendMetadataRefresh(filterExpressions string) error {
	var payload []byte

	if filterExpressions != "" {
		encoded := s.encoding.EncodeString(filterExpressions)
		payload = make([]byte, 4+len(encoded))
		bytecodec.PutUInt32(payload[:4], uint32(len(encoded)))
		copy(payload[4:], encoded)
	}

	return s.sendCommand(transport.ServerCommand.MetadataRefresh, payload)
}

// Subscribe requests streaming measurements matching settings. Every call stores settings on the
// session, replacing any earlier ones, before the request is sent.
func (s *Session) Subscribe(settings *Settings) error {
	if settings == nil {
		return errors.New("subscriber: Subscribe requires non-nil Settings")
	}

	s.settings = settings

	if settings.UdpPort != 0 {
		if err := s.openDataChannel(settings.UdpPort); err != nil {
			return err
		}
	}

	connectionString := buildConnectionString(settings)
	encoded := s.encoding.EncodeString(connectionString)

	requestFlags := transport.DataPacketFlags.Compact

	if s.compressPayload {
		requestFlags |= transport.DataPacketFlags.Compressed
	}

	payload := make([]byte, 1+4+len(encoded))
	payload[0] = byte(requestFlags)
	bytecodec.PutUInt32(payload[1:5], uint32(len(encoded)))
	copy(payload[5:], encoded)

	s.tsscMutex.Lock()
	s.tsscDecoder = nil
	s.tsscResetNeeded = false
	s.tsscMutex.Unlock()

	s.bufferBlocks.Reset()
	s.parseFailure.Reset()

	if err := s.sendCommand(transport.ServerCommand.Subscribe, payload); err != nil {
		return err
	}

	s.setState(State.Subscribed)
	s.watchdog.Reset()

	return nil
}

// Unsubscribe tears down the UDP data channel, stops the data-loss watchdog, and resets the TSSC
// decoder, per spec §4.5.
func (s *Session) Unsubscribe() error {
	s.setState(State.Unsubscribed)
	s.watchdog.Stop()

	if s.udpConn != nil {
		s.udpConn.Close()
		s.udpConn = nil
	}

	s.tsscMutex.Lock()
	s.tsscDecoder = nil
	s.tsscMutex.Unlock()

	return s.sendCommand(transport.ServerCommand.Unsubscribe, nil)
}

func (s *Session) openDataChannel(port uint16) error {
	addr := &net.UDPAddr{Port: int(port)}
	conn, err := net.ListenUDP("udp", addr)

	if err != nil {
		return err
	}

	s.udpConn = conn
	go s.udpReadLoop(conn)

	return nil
}

func (s *Session) sendCommand(command transport.ServerCommandEnum, payload []byte) error {
	if s.conn == nil {
		return errors.New("subscriber: not connected")
	}

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	_, err := s.conn.Write(transport.EncodeCommand(command, payload))
	return err
}

func (s *Session) readLoop() {
	buffer := make([]byte, 64*1024)

	for {
		n, err := s.conn.Read(buffer)

		if n > 0 {
			s.watchdog.Reset()

			frames, feedErr := s.responseReader.Feed(buffer[:n])

			for _, frame := range frames {
				s.dispatch(frame)
			}

			if feedErr != nil {
				s.dispatchErrorMessage("Frame reassembly error: " + feedErr.Error())
				s.Disconnect()
				return
			}
		}

		if err != nil {
			if s.connected.IsSet() {
				s.Disconnect()
			}

			return
		}
	}
}

func (s *Session) udpReadLoop(conn *net.UDPConn) {
	buffer := make([]byte, 64*1024)

	for {
		n, _, err := conn.ReadFromUDP(buffer)

		if err != nil {
			return
		}

		if n < int(transport.ResponseHeaderSize) {
			continue
		}

		reader := transport.NewResponseFrameReader()
		frames, feedErr := reader.Feed(buffer[:n])

		if feedErr != nil {
			s.dispatchErrorMessage("UDP frame decode error: " + feedErr.Error())
			continue
		}

		for _, frame := range frames {
			s.dispatch(frame)
		}
	}
}

func (s *Session) dispatch(frame transport.ResponseFrame) {
	switch frame.ResponseCode {
	case transport.ServerResponse.Succeeded:
		s.handleSucceeded(frame)
	case transport.ServerResponse.Failed:
		s.dispatchErrorMessage("Command " + strconv.Itoa(int(frame.InResponseTo)) + " failed: " + s.decodeMessage(frame.Payload))
	case transport.ServerResponse.DataPacket:
		s.handleDataPacket(frame.Payload)
	case transport.ServerResponse.UpdateSignalIndexCache:
		s.handleUpdateSignalIndexCache(frame.Payload)
	case transport.ServerResponse.UpdateBaseTimes:
		s.handleUpdateBaseTimes(frame.Payload)
	case transport.ServerResponse.UpdateCipherKeys:
		s.handleUpdateCipherKeys(frame.Payload)
	case transport.ServerResponse.DataStartTime:
		s.dispatchStatusMessage("Data publication start time received.")
	case transport.ServerResponse.ProcessingComplete:
		s.handleProcessingComplete(frame.Payload)
	case transport.ServerResponse.BufferBlock:
		s.handleBufferBlock(frame.Payload)
	case transport.ServerResponse.Notify:
		s.handleNotify(frame.Payload)
	case transport.ServerResponse.ConfigurationChanged:
		s.BeginCallbackSync()

		if s.ConfigurationChangedCallback != nil {
			s.ConfigurationChangedCallback()
		}

		s.EndCallbackSync()
	case transport.ServerResponse.NoOP:
		// Keep-alive; no action required.
	default:
		s.dispatchStatusMessage(fmt.Sprintf("Received unknown response code 0x%02X.", byte(frame.ResponseCode)))
	}
}

func (s *Session) handleSucceeded(frame transport.ResponseFrame) {
	if frame.InResponseTo == transport.ServerCommand.MetadataRefresh {
		s.handleMetadataRefresh(frame.Payload)
		return
	}

	s.dispatchStatusMessage(s.decodeMessage(frame.Payload))
}

// handleMetadataRefresh parses the tabular metadata set a MetadataRefresh request's Succeeded response
// carries, per spec: optionally GZip-wrapped when CompressMetadata was negotiated.
func (s *Session) handleMetadataRefresh(payload []byte) {
	raw := payload

	if s.compressMetadata {
		decompressed, err := transport.DecompressGZip(payload)

		if err != nil {
			s.dispatchErrorMessage("Failed to decompress metadata: " + err.Error())
			return
		}

		raw = decompressed
	}

	dataSet := metadata.FromXml(raw)

	if dataSet == nil {
		s.dispatchErrorMessage("Failed to parse metadata response.")
		return
	}

	s.loadMeasurementMetadata(dataSet)

	s.BeginCallbackSync()

	if s.MetadataReceivedCallback != nil {
		s.MetadataReceivedCallback(dataSet)
	}

	s.EndCallbackSync()

	if s.config.AutoSubscribe && s.settings != nil {
		if err := s.Subscribe(s.settings); err != nil {
			s.dispatchErrorMessage("Failed to auto-subscribe after metadata refresh: " + err.Error())
		}
	}
}

// loadMeasurementMetadata interns every row of the MeasurementDetail table into the session's
// registry, attaching adder/multiplier and descriptive fields to the process-wide key.
func (s *Session) loadMeasurementMetadata(dataSet *metadata.DataSet) {
	table := dataSet.Table("MeasurementDetail")

	if table == nil {
		return
	}

	signalIDIndex := table.ColumnIndex("SignalID")

	if signalIDIndex < 0 {
		return
	}

	for i := 0; i < table.RowCount(); i++ {
		row := table.Row(i)

		if row == nil {
			continue
		}

		signalID, err := row.ValueAsGuid(signalIDIndex)

		if err != nil || signalID.IsZero() {
			continue
		}

		var source string
		var id uint64

		if measurementKey, keyErr := row.ValueAsStringByName("ID"); keyErr == nil {
			parts := strings.SplitN(measurementKey, ":", 2)

			if len(parts) == 2 {
				source = parts[0]
				id, _ = strconv.ParseUint(parts[1], 10, 64)
			}
		}

		meta := &measurement.Metadata{Multiplier: 1, UpdatedOn: time.Now()}

		if tag, tagErr := row.ValueAsStringByName("PointTag"); tagErr == nil {
			meta.Tag = tag
		}

		if signalRef, refErr := row.ValueAsStringByName("SignalReference"); refErr == nil {
			meta.SignalReference = signalRef
		}

		if signalType, typeErr := row.ValueAsStringByName("SignalAcronym"); typeErr == nil {
			meta.SignalType = signalType
		}

		if description, descErr := row.ValueAsStringByName("Description"); descErr == nil {
			meta.Description = description
		}

		s.registry.Add(signalID, source, id, meta)
	}
}

func (s *Session) decodeMessage(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	return s.encoding.DecodeString(payload)
}

func (s *Session) handleUpdateSignalIndexCache(payload []byte) {
	raw := payload

	if s.compressSIC {
		decompressed, err := transport.DecompressGZip(payload)

		if err == nil {
			raw = decompressed
		}
	}

	cache, subscriberID, err := transport.DecodeSignalIndexCache(s.encoding, raw)

	if err != nil {
		s.dispatchErrorMessage("Failed to decode signal index cache: " + err.Error())
		return
	}

	s.subscriberID = subscriberID
	s.signalIndexCache.Store(cache)

	maxIndex := uint32(cache.MaxSignalIndex()) + 1

	s.tsscMutex.Lock()
	s.tsscDecoder = tssc.NewDecoder(maxIndex)
	s.tsscResetNeeded = false
	s.tsscMutex.Unlock()

	if err := s.sendCommand(transport.ServerCommand.ConfirmSignalIndexCache, nil); err != nil {
		s.dispatchErrorMessage("Failed to confirm signal index cache: " + err.Error())
	}
}

func (s *Session) handleUpdateBaseTimes(payload []byte) {
	if len(payload) < 17 {
		s.dispatchErrorMessage("Malformed base time update.")
		return
	}

	index := uint32(payload[0])
	offset0, _ := bytecodec.Int64(payload[1:9])
	offset1, _ := bytecodec.Int64(payload[9:17])

	s.baseTimeMutex.Lock()
	s.baseTimeOffset = [2]int64{offset0, offset1}
	s.baseTimeIndex = index
	s.baseTimeMutex.Unlock()
}

func (s *Session) handleUpdateCipherKeys(payload []byte) {
	if len(payload) < 1 {
		return
	}

	index := uint32(payload[0])
	offset := 1

	if offset+4 > len(payload) {
		return
	}

	keyLen, _ := bytecodec.UInt32(payload[offset:])
	offset += 4

	if offset+int(keyLen)+4 > len(payload) {
		return
	}

	key := payload[offset : offset+int(keyLen)]
	offset += int(keyLen)

	ivLen, _ := bytecodec.UInt32(payload[offset:])
	offset += 4

	if offset+int(ivLen) > len(payload) {
		return
	}

	iv := payload[offset : offset+int(ivLen)]

	s.cipherMutex.Lock()
	s.cipherSlots[index%2] = cipherSlot{pair: transport.CipherKeyPair{Key: append([]byte(nil), key...), IV: append([]byte(nil), iv...)}, set: true}
	s.cipherActive = index % 2
	s.cipherEnabled = true
	s.cipherMutex.Unlock()
}

func (s *Session) handleProcessingComplete(payload []byte) {
	message := s.decodeMessage(payload)

	s.BeginCallbackSync()

	if s.ProcessingCompleteCallback != nil {
		s.ProcessingCompleteCallback(message)
	}

	s.EndCallbackSync()
}

func (s *Session) handleNotify(payload []byte) {
	message := s.decodeMessage(payload)
	s.sendCommand(transport.ServerCommand.ConfirmNotification, nil)

	s.BeginCallbackSync()

	if s.NotificationReceivedCallback != nil {
		s.NotificationReceivedCallback(message)
	}

	s.EndCallbackSync()
}

func (s *Session) handleBufferBlock(payload []byte) {
	if len(payload) < 6 {
		return
	}

	seq, _ := bytecodec.UInt32(payload[:4])
	signalIndex, _ := bytecodec.UInt16(payload[4:6])

	var signalID guid.Guid

	if cache := s.signalIndexCache.Load(); cache != nil {
		signalID = cache.SignalID(signalIndex)
	}

	block := measurement.BufferBlock{SignalID: signalID, Buffer: append([]byte(nil), payload[6:]...)}

	ready, delivered := s.bufferBlocks.Receive(seq, block)

	confirmation := make([]byte, 4)
	bytecodec.PutUInt32(confirmation, seq)
	s.sendCommand(transport.ServerCommand.ConfirmBufferBlock, confirmation)

	if !delivered || len(ready) == 0 {
		return
	}

	s.BeginCallbackSync()

	if s.NewBufferBlocksCallback != nil {
		s.NewBufferBlocksCallback(ready)
	}

	s.EndCallbackSync()
}

func (s *Session) cipherPairFor(index uint32) (transport.CipherKeyPair, bool) {
	s.cipherMutex.RLock()
	defer s.cipherMutex.RUnlock()

	slot := s.cipherSlots[index%2]
	return slot.pair, slot.set
}

func (s *Session) handleDataPacket(payload []byte) {
	if len(payload) < 1 {
		return
	}

	flags := transport.DataPacketFlagsEnum(payload[0])
	body := payload[1:]

	if flags&transport.DataPacketFlags.CipherIndex != 0 || (flags != transport.DataPacketFlags.NoFlags && s.isCipherEnabled()) {
		index := uint32(0)

		if flags&transport.DataPacketFlags.CipherIndex != 0 {
			index = 1
		}

		if pair, ok := s.cipherPairFor(index); ok {
			decrypted, err := transport.DecryptPayload(pair, body)

			if err != nil {
				s.parseFailure.Record()
				s.dispatchErrorMessage("Failed to decrypt data packet: " + err.Error())
				return
			}

			body = decrypted
		}
	}

	cache := s.signalIndexCache.Load()

	if cache == nil {
		// Subscribers must not parse compact measurements until a signal index cache is present.
		return
	}

	var measurements []measurement.Measurement
	var err error

	if flags&transport.DataPacketFlags.Compressed != 0 {
		measurements, err = s.decodeTSSCPacket(body, cache)
	} else if flags&transport.DataPacketFlags.Compact != 0 {
		measurements, err = s.decodeCompactPacket(body, cache)
	} else {
		err = errors.New("subscriber: full-fidelity (non-compact) data packets are not supported")
	}

	if err != nil {
		s.parseFailure.Record()
		s.dispatchErrorMessage("Failed to parse data packet: " + err.Error())
		return
	}

	if len(measurements) == 0 {
		return
	}

	s.BeginCallbackSync()

	if s.NewMeasurementsCallback != nil {
		s.NewMeasurementsCallback(measurements)
	}

	s.EndCallbackSync()
}

func (s *Session) isCipherEnabled() bool {
	s.cipherMutex.RLock()
	defer s.cipherMutex.RUnlock()
	return s.cipherEnabled
}

func (s *Session) decodeCompactPacket(body []byte, cache *transport.SignalIndexCache) ([]measurement.Measurement, error) {
	s.baseTimeMutex.RLock()
	offsets := s.baseTimeOffset
	s.baseTimeMutex.RUnlock()

	includeTime := s.settings == nil || s.settings.IncludeTime
	useMillisecondResolution := s.settings != nil && s.settings.UseMillisecondResolution

	var result []measurement.Measurement
	offset := 0

	for offset < len(body) {
		cm, n, err := transport.NewCompactMeasurement(includeTime, useMillisecondResolution, &offsets, body[offset:])

		if err != nil {
			return result, err
		}

		if n == 0 {
			break
		}

		result = append(result, cm.Expand(cache))
		offset += n
	}

	return result, nil
}

func (s *Session) decodeTSSCPacket(body []byte, cache *transport.SignalIndexCache) ([]measurement.Measurement, error) {
	if len(body) < 3 {
		return nil, errors.New("tssc payload too short")
	}

	sequence, _ := bytecodec.UInt16(body[1:3])

	s.tsscMutex.Lock()
	defer s.tsscMutex.Unlock()

	if sequence == 0 {
		s.tsscDecoder = tssc.NewDecoder(uint32(cache.MaxSignalIndex()) + 1)
		s.tsscResetNeeded = false
		return nil, nil
	}

	if s.tsscDecoder == nil {
		s.tsscResetNeeded = true
		return nil, errors.New("tssc stream received before reset")
	}

	if s.tsscResetNeeded {
		return nil, nil
	}

	s.tsscDecoder.SetBuffer(body[3:])

	var result []measurement.Measurement

	for {
		var id int32
		var timestamp int64
		var stateFlags uint32
		var value float32

		ok, err := s.tsscDecoder.TryGetMeasurement(&id, &timestamp, &stateFlags, &value)

		if err != nil {
			s.tsscResetNeeded = true
			return result, err
		}

		if !ok {
			break
		}

		result = append(result, measurement.Measurement{
			SignalID:  cache.SignalID(uint16(id)),
			Timestamp: ticksFromInt64(timestamp),
			Value:     float64(value),
			Flags:     fullStateFlagsFrom(stateFlags),
		})
	}

	return result, nil
}

func (s *Session) handleDataLoss() {
	s.dispatchErrorMessage("No data received within the configured data-loss interval; restarting session.")
	s.Disconnect()
}

func (s *Session) handleParseExceptionThreshold(count int) {
	s.dispatchErrorMessage(fmt.Sprintf("Exceeded %d measurement parse exceptions within the configured window; restarting session.", count))
	s.Disconnect()
}

func (s *Session) dispatchStatusMessage(message string) {
	s.BeginCallbackSync()

	if s.StatusMessageCallback != nil {
		go s.StatusMessageCallback(message)
	}

	s.EndCallbackSync()
}

func (s *Session) dispatchErrorMessage(message string) {
	s.BeginCallbackSync()

	if s.ErrorMessageCallback != nil {
		go s.ErrorMessageCallback(message)
	}

	s.EndCallbackSync()
}

// BeginCallbackAssignment informs the Session that a callback change has been initiated.
func (s *Session) BeginCallbackAssignment() {
	s.assigningHandlerMutex.Lock()
}

// BeginCallbackSync begins a callback synchronization operation.
func (s *Session) BeginCallbackSync() {
	s.assigningHandlerMutex.RLock()
}

// EndCallbackSync ends a callback synchronization operation.
func (s *Session) EndCallbackSync() {
	s.assigningHandlerMutex.RUnlock()
}

// EndCallbackAssignment informs the Session that a callback change has been completed.
func (s *Session) EndCallbackAssignment() {
	s.assigningHandlerMutex.Unlock()
}

// ticksFromInt64 reinterprets a TSSC-decoded signed tick count as the unsigned Ticks representation
// measurement.Measurement carries.
func ticksFromInt64(value int64) ticks.Ticks {
	return ticks.Ticks(value)
}

// fullStateFlagsFrom reinterprets a TSSC-decoded state flags word as stateflags.StateFlags; TSSC
// carries the full 32-bit flags word directly, unlike the compact measurement codec's 8-bit summary.
func fullStateFlagsFrom(value uint32) stateflags.StateFlags {
	return stateflags.StateFlags(value)
}
