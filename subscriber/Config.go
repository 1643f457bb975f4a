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
//  09/29/2021 - J. Ritchie Carroll
//       Generated original version of source code.
//
//******************************************************************************************************

package subscriber

// Config defines the STTP connection parameters.
type Config struct {
	// MaxRetries defines the maximum number of times to retry a connection.
	// Set value to -1 to retry infinitely.
	MaxRetries int32

	// RetryInterval defines the base retry interval, in milliseconds. Retries will
	// exponentially back-off starting from this interval.
	RetryInterval int32

	// MaxRetryInterval defines the maximum retry interval, in milliseconds.
	MaxRetryInterval int32

	// AutoReconnect defines flag that determines if connections should be
	// automatically reattempted.
	AutoReconnect bool

	// AutoRequestMetadata defines the flag that determines if metadata should be
	// automatically requested upon successful connection.
	AutoRequestMetadata bool

	// AutoSubscribe defines the flag that determines if subscription should be
	// handled automatically upon successful connection (or, when AutoRequestMetadata
	// is also set, after metadata has been received).
	AutoSubscribe bool

	// CompressPayloadData determines whether payload data is compressed.
	CompressPayloadData bool

	// CompressMetadata determines whether the metadata transfer is compressed.
	CompressMetadata bool

	// CompressSignalIndexCache determines whether the signal index cache is compressed.
	CompressSignalIndexCache bool

	// MetadataFilters defines any filters to be applied to incoming metadata to reduce total
	// received metadata. Each filter expression should be separated by semi-colon.
	MetadataFilters string

	// Version defines the target STTP protocol version.
	Version byte

	// DataLossInterval is the number of seconds of silence on the data channel before the watchdog
	// declares a data loss condition. Zero disables the watchdog.
	DataLossInterval float64

	// ParseExceptionThreshold is the number of measurement parse errors tolerated within
	// ParseExceptionWindow before the session reports a sustained parsing failure.
	ParseExceptionThreshold int

	// ParseExceptionWindow is the sliding window, in seconds, over which ParseExceptionThreshold
	// is evaluated.
	ParseExceptionWindow float64
}

var configDefaults = Config{
	MaxRetries:               -1,
	RetryInterval:            1000,
	MaxRetryInterval:         30000,
	AutoReconnect:            true,
	AutoRequestMetadata:      true,
	AutoSubscribe:            true,
	CompressPayloadData:      true,
	CompressMetadata:         true,
	CompressSignalIndexCache: true,
	Version:                  2,
	DataLossInterval:         10.0,
	ParseExceptionThreshold:  10,
	ParseExceptionWindow:     5.0,
}

// NewConfig creates a new Config instance initialized with default values.
func NewConfig() *Config {
	config := configDefaults
	return &config
}
