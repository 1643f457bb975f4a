//******************************************************************************************************
//  Subscriber.go - Gbtc
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
//  07/31/2026 - Generated original version of source code, a facade over the Session/Connector pair
//       patterned after sttp/Subscriber.go's facade over its DataSubscriber/SubscriberConnector pair.
//
//******************************************************************************************************

package subscriber

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gridstream/sttp/format"
	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/metadata"
)

// Subscriber is a simplified facade over Session and Connector: it wires the connect/reconnect cycle,
// default logging, and caller callbacks into a single entry point for common subscription uses.
type Subscriber struct {
	config    *Config
	session   *Session
	connector *Connector

	statusMessageLogger           func(message string)
	errorMessageLogger            func(message string)
	metadataReceiver              func(dataSet *metadata.DataSet)
	newMeasurementsReceiver       func([]measurement.Measurement)
	newBufferBlocksReceiver       func([]measurement.BufferBlock)
	configurationChangedReceiver  func()
	notificationReceiver          func(string)
	processingCompleteReceiver    func(string)
	connectionEstablishedReceiver func()
	connectionTerminatedReceiver  func()

	consoleLock sync.Mutex

	assigningHandlerMutex sync.RWMutex
}

// NewSubscriber creates a new Subscriber with default console logging.
func NewSubscriber() *Subscriber {
	sb := &Subscriber{
		config:    NewConfig(),
		session:   NewSession(NewConfig()),
		connector: NewConnector(),
	}

	sb.statusMessageLogger = sb.DefaultStatusMessageLogger
	sb.errorMessageLogger = sb.DefaultErrorMessageLogger
	sb.connectionEstablishedReceiver = sb.DefaultConnectionEstablishedReceiver
	sb.connectionTerminatedReceiver = sb.DefaultConnectionTerminatedReceiver

	return sb
}

// Close cleanly shuts down a Subscriber that is no longer being used.
func (sb *Subscriber) Close() {
	sb.connector.Cancel()
	sb.session.Dispose()
}

// IsConnected determines if the Subscriber is currently connected to a data publisher.
func (sb *Subscriber) IsConnected() bool {
	return sb.session.IsConnected()
}

// IsSubscribed determines if the Subscriber is currently subscribed to a data stream.
func (sb *Subscriber) IsSubscribed() bool {
	return sb.session.State() == State.Subscribed
}

// SubscriberID returns the identifier the publisher assigned to this connection, available once
// the initial signal-index cache has been received.
func (sb *Subscriber) SubscriberID() string {
	return sb.session.subscriberID.String()
}

// Dial starts the connection cycle to an STTP publisher at address ("host:port"). Config controls
// connection-related settings; pass nil for defaults. When Config.AutoReconnect is true, the
// connection is automatically retried when it drops. When Config.AutoRequestMetadata is true,
// metadata is requested upon successful connection; when both AutoRequestMetadata and AutoSubscribe
// are true, subscription follows metadata reception. When only AutoSubscribe is true, subscription
// is requested immediately upon connection.
func (sb *Subscriber) Dial(address string, config *Config) error {
	hostname, portname, err := net.SplitHostPort(address)

	if err != nil {
		return err
	}

	port, err := strconv.Atoi(portname)

	if err != nil {
		return fmt.Errorf("invalid port number %q: %s", portname, err.Error())
	}

	if port < 1 || port > math.MaxUint16 {
		return fmt.Errorf("port number %q is out of range: must be 1 to %d", portname, math.MaxUint16)
	}

	if config != nil {
		sb.config = config
	}

	return sb.connect(hostname, uint16(port))
}

func (sb *Subscriber) connect(hostname string, port uint16) error {
	var settings *Settings

	if sb.session != nil {
		settings = sb.session.settings
	}

	sb.session = NewSession(sb.config)
	sb.session.settings = settings
	con := sb.connector

	con.Hostname = hostname
	con.Port = port
	con.MaxRetries = sb.config.MaxRetries
	con.RetryInterval = sb.config.RetryInterval
	con.MaxRetryInterval = sb.config.MaxRetryInterval
	con.AutoReconnect = sb.config.AutoReconnect

	con.BeginCallbackAssignment()
	sb.session.BeginCallbackAssignment()
	sb.beginCallbackSync()

	con.ErrorMessageCallback = sb.errorMessageLogger
	sb.session.StatusMessageCallback = sb.statusMessageLogger
	sb.session.ErrorMessageCallback = sb.errorMessageLogger

	con.ReconnectCallback = sb.handleReconnect
	sb.session.MetadataReceivedCallback = sb.handleMetadataReceived
	sb.session.ConfigurationChangedCallback = sb.handleConfigurationChanged
	sb.session.ProcessingCompleteCallback = sb.handleProcessingComplete
	sb.session.ConnectionTerminatedCallback = sb.handleConnectionTerminated
	sb.session.NewMeasurementsCallback = sb.handleNewMeasurements
	sb.session.NewBufferBlocksCallback = sb.handleNewBufferBlocks
	sb.session.NotificationReceivedCallback = sb.handleNotificationReceived

	sb.endCallbackSync()
	sb.session.EndCallbackAssignment()
	con.EndCallbackAssignment()

	var err error

	switch con.Connect(sb.session) {
	case ConnectStatus.Success:
		sb.beginCallbackSync()

		if sb.connectionEstablishedReceiver != nil {
			sb.connectionEstablishedReceiver()
		}

		sb.endCallbackSync()
	case ConnectStatus.Failed:
		err = errors.New("all connection attempts failed")
	case ConnectStatus.Canceled:
		err = errors.New("connection canceled")
	}

	return err
}

// Disconnect disconnects from an STTP publisher.
func (sb *Subscriber) Disconnect() {
	sb.connector.Cancel()
	sb.session.Disconnect()
}

// RequestMetadata sends a request to the data publisher indicating that the Subscriber would like
// new metadata. Any configured MetadataFilters are included in the request.
func (sb *Subscriber) RequestMetadata() error {
	return sb.session.SendMetadataRefresh(sb.config.MetadataFilters)
}

// Subscribe requests that the Subscriber start receiving streaming data from a publisher. If
// already connected, the request is sent immediately; otherwise settings are used when the
// connection is next established (via AutoSubscribe on reconnect/metadata reception).
//
// filterExpression selects the desired measurements, e.g. a UUID list, tag-name list,
// "source:id" measurement-key list, or a "FILTER <table> WHERE <predicate>" expression.
func (sb *Subscriber) Subscribe(filterExpression string, settings *Settings) error {
	if settings == nil {
		settings = NewSettings()
	}

	settings.FilterExpression = filterExpression

	if sb.session.IsConnected() {
		return sb.session.Subscribe(settings)
	}

	sb.session.settings = settings
	return nil
}

// Unsubscribe sends a request to the data publisher indicating that the Subscriber would like to
// stop receiving streaming data.
func (sb *Subscriber) Unsubscribe() error {
	return sb.session.Unsubscribe()
}

func (sb *Subscriber) beginCallbackAssignment() {
	sb.assigningHandlerMutex.Lock()
}

func (sb *Subscriber) beginCallbackSync() {
	sb.assigningHandlerMutex.RLock()
}

func (sb *Subscriber) endCallbackSync() {
	sb.assigningHandlerMutex.RUnlock()
}

func (sb *Subscriber) endCallbackAssignment() {
	sb.assigningHandlerMutex.Unlock()
}

// StatusMessage executes the defined status message logger callback.
func (sb *Subscriber) StatusMessage(message string) {
	sb.beginCallbackSync()

	if sb.statusMessageLogger != nil {
		sb.statusMessageLogger(message)
	}

	sb.endCallbackSync()
}

// ErrorMessage executes the defined error message logger callback.
func (sb *Subscriber) ErrorMessage(message string) {
	sb.beginCallbackSync()

	if sb.errorMessageLogger != nil {
		sb.errorMessageLogger(message)
	}

	sb.endCallbackSync()
}

func (sb *Subscriber) handleReconnect(session *Session) {
	if session.IsConnected() {
		sb.beginCallbackSync()

		if sb.connectionEstablishedReceiver != nil {
			sb.connectionEstablishedReceiver()
		}

		sb.endCallbackSync()
	} else {
		session.Disconnect()
		sb.StatusMessage("Connection retry attempts exceeded.")
	}
}

func (sb *Subscriber) handleMetadataReceived(dataSet *metadata.DataSet) {
	sb.showMetadataSummary(dataSet)

	sb.beginCallbackSync()

	if sb.metadataReceiver != nil {
		sb.metadataReceiver(dataSet)
	}

	sb.endCallbackSync()
}

func (sb *Subscriber) showMetadataSummary(dataSet *metadata.DataSet) {
	var tableDetails strings.Builder
	totalRows := 0

	tableDetails.WriteString("    Discovered:\n")

	for _, table := range dataSet.Tables() {
		rows := table.RowCount()
		totalRows += rows
		tableDetails.WriteString(fmt.Sprintf("        %s %s records\n", format.Int(rows), table.Name()))
	}

	var message strings.Builder

	message.WriteString("Parsed ")
	message.WriteString(format.Int(totalRows))
	message.WriteString(" metadata records.\n")
	message.WriteString(tableDetails.String())

	if schemaVersion := dataSet.Table("SchemaVersion"); schemaVersion != nil && schemaVersion.RowCount() > 0 {
		message.WriteString("Metadata schema version: " + schemaVersion.GetRowValueByName(0, "VersionNumber"))
	}

	sb.StatusMessage(message.String())
}

func (sb *Subscriber) handleConfigurationChanged() {
	sb.beginCallbackSync()

	if sb.configurationChangedReceiver != nil {
		sb.configurationChangedReceiver()
	}

	sb.endCallbackSync()

	if sb.config.AutoRequestMetadata {
		sb.RequestMetadata()
	}
}

func (sb *Subscriber) handleProcessingComplete(message string) {
	sb.StatusMessage(message)

	sb.beginCallbackSync()

	if sb.processingCompleteReceiver != nil {
		sb.processingCompleteReceiver(message)
	}

	sb.endCallbackSync()
}

func (sb *Subscriber) handleConnectionTerminated(*Session) {
	sb.beginCallbackSync()

	if sb.connectionTerminatedReceiver != nil {
		sb.connectionTerminatedReceiver()
	}

	sb.endCallbackSync()
}

func (sb *Subscriber) handleNewMeasurements(measurements []measurement.Measurement) {
	sb.beginCallbackSync()

	if sb.newMeasurementsReceiver != nil {
		sb.newMeasurementsReceiver(measurements)
	}

	sb.endCallbackSync()
}

func (sb *Subscriber) handleNewBufferBlocks(blocks []measurement.BufferBlock) {
	sb.beginCallbackSync()

	if sb.newBufferBlocksReceiver != nil {
		sb.newBufferBlocksReceiver(blocks)
	}

	sb.endCallbackSync()
}

func (sb *Subscriber) handleNotificationReceived(notification string) {
	sb.beginCallbackSync()

	if sb.notificationReceiver != nil {
		sb.notificationReceiver(notification)
	}

	sb.endCallbackSync()
}

// DefaultStatusMessageLogger writes status messages to stdout.
func (sb *Subscriber) DefaultStatusMessageLogger(message string) {
	sb.consoleLock.Lock()
	defer sb.consoleLock.Unlock()
	fmt.Println(message)
}

// DefaultErrorMessageLogger writes error messages to stderr.
func (sb *Subscriber) DefaultErrorMessageLogger(message string) {
	sb.consoleLock.Lock()
	defer sb.consoleLock.Unlock()
	fmt.Fprintln(os.Stderr, message)
}

// DefaultConnectionEstablishedReceiver writes connection feedback to the status message callback.
func (sb *Subscriber) DefaultConnectionEstablishedReceiver() {
	sb.StatusMessage("Connection to " + sb.connector.Hostname + ":" + strconv.Itoa(int(sb.connector.Port)) + " established.")
}

// DefaultConnectionTerminatedReceiver writes connection feedback to the error message callback.
func (sb *Subscriber) DefaultConnectionTerminatedReceiver() {
	sb.ErrorMessage("Connection to " + sb.connector.Hostname + ":" + strconv.Itoa(int(sb.connector.Port)) + " terminated.")
}

// SetStatusMessageLogger defines the callback that handles informational message logging.
func (sb *Subscriber) SetStatusMessageLogger(callback func(message string)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.statusMessageLogger = callback
}

// SetErrorMessageLogger defines the callback that handles error message logging.
func (sb *Subscriber) SetErrorMessageLogger(callback func(message string)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.errorMessageLogger = callback
}

// SetMetadataReceiver defines the callback that handles reception of the metadata response.
func (sb *Subscriber) SetMetadataReceiver(callback func(dataSet *metadata.DataSet)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.metadataReceiver = callback
}

// SetNewMeasurementsReceiver defines the callback that handles reception of new measurements.
func (sb *Subscriber) SetNewMeasurementsReceiver(callback func([]measurement.Measurement)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.newMeasurementsReceiver = callback
}

// SetNewBufferBlocksReceiver defines the callback that handles reception of new buffer blocks.
func (sb *Subscriber) SetNewBufferBlocksReceiver(callback func([]measurement.BufferBlock)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.newBufferBlocksReceiver = callback
}

// SetConfigurationChangedReceiver defines the callback for publisher configuration-change notices.
func (sb *Subscriber) SetConfigurationChangedReceiver(callback func()) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.configurationChangedReceiver = callback
}

// SetNotificationReceiver defines the callback that handles reception of a publisher notification.
func (sb *Subscriber) SetNotificationReceiver(callback func(notification string)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.notificationReceiver = callback
}

// SetProcessingCompleteReceiver defines the callback for historical playback completion notices.
func (sb *Subscriber) SetProcessingCompleteReceiver(callback func(message string)) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.processingCompleteReceiver = callback
}

// SetConnectionEstablishedReceiver defines the callback invoked when a connection is established.
func (sb *Subscriber) SetConnectionEstablishedReceiver(callback func()) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.connectionEstablishedReceiver = callback
}

// SetConnectionTerminatedReceiver defines the callback invoked when a connection is terminated.
func (sb *Subscriber) SetConnectionTerminatedReceiver(callback func()) {
	sb.beginCallbackAssignment()
	defer sb.endCallbackAssignment()
	sb.connectionTerminatedReceiver = callback
}
