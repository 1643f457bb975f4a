//******************************************************************************************************
//  Config.go - Gbtc
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
//       subscriber/Config.go; no prior counterpart exists since sttp-goapi never grew a
//       DataPublisher, so field names and the *Defaults convention are carried over from there.
//
//******************************************************************************************************

package publisher

import "github.com/gridstream/sttp/transport"

// Config defines the options that govern a Publisher's accept loop and per-client session behavior.
type Config struct {
	// ListenAddress is the "host:port" the command channel listens on. An empty host binds all
	// interfaces. The STTP default command channel port is 6165.
	ListenAddress string

	// SecurityMode selects whether accepted connections must present a client certificate under TLS.
	SecurityMode transport.SecurityModeEnum

	// CipherKeyRotationPeriod is the interval, in milliseconds, between automatic cipher key/IV
	// rotations for clients that negotiated encryption. Clamped to transport.MinimumCipherKeyRotationPeriod.
	CipherKeyRotationPeriod int64

	// EncryptPayload determines whether data packet payloads are encrypted by default for newly
	// subscribed clients.
	EncryptPayload bool

	// UseBaseTimeOffsets determines whether compact measurement timestamps are encoded relative to a
	// per-client base time pair rather than as full 8-byte ticks. The source never derives a second
	// base time pair after the initial one installed at subscribe time (see DESIGN.md).
	UseBaseTimeOffsets bool

	// BufferBlockRetransmitTimeout is how long an unacknowledged buffer block is held before the
	// publisher retransmits it.
	BufferBlockRetransmitTimeout int64

	// Version is the protocol version this publisher reports; a DefineOperationalModes version
	// sub-field other than this value is logged but does not reject the connection.
	Version byte
}

var configDefaults = Config{
	ListenAddress:                ":6165",
	SecurityMode:                 transport.SecurityMode.None,
	CipherKeyRotationPeriod:      transport.DefaultCipherKeyRotationPeriod,
	EncryptPayload:               false,
	UseBaseTimeOffsets:           true,
	BufferBlockRetransmitTimeout: 5000,
	Version:                      2,
}

// NewConfig creates a new Config instance initialized with default values.
func NewConfig() *Config {
	config := configDefaults
	return &config
}
