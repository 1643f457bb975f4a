//******************************************************************************************************
//  Settings.go - Gbtc
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

// Settings defines the STTP subscription related settings. Internally, a Subscriber maps Settings
// values to the Subscribe command's connection string.
type Settings struct {
	// FilterExpression selects the desired measurements, e.g. a "G1;G2" key list or a
	// "FILTER ActiveMeasurements WHERE SignalType='FREQ'" expression.
	FilterExpression string

	// Throttled determines if data will be published using down-sampling.
	Throttled bool
	// PublishInterval defines the down-sampling publish interval, in seconds, to use when Throttled is true.
	PublishInterval float64

	// UdpPort defines the desired UDP port to use for publication. Zero means receive data over
	// the command channel's TCP connection instead.
	UdpPort uint16

	// IncludeTime determines if time should be included in non-compressed, compact measurements.
	IncludeTime bool
	// EnableTimeReasonabilityCheck determines if publisher should perform time reasonability checks.
	EnableTimeReasonabilityCheck bool
	// LagTime defines the allowed past time deviation tolerance in seconds.
	LagTime float64
	// LeadTime defines the allowed future time deviation tolerance in seconds.
	LeadTime float64
	// UseLocalClockAsRealTime determines if publisher should use local clock as real time.
	UseLocalClockAsRealTime bool
	// UseMillisecondResolution determines if time should be restricted to milliseconds.
	UseMillisecondResolution bool
	// RequestNaNValueFilter requests that the publisher filter, i.e., not send, any NaN values.
	RequestNaNValueFilter bool

	// StartTime defines the start time for a requested historical subscription.
	StartTime string
	// StopTime defines the stop time for a requested historical subscription.
	StopTime string
	// ConstraintParameters defines any custom constraint parameters for a historical subscription.
	ConstraintParameters string
	// ProcessingInterval defines the initial playback speed, in milliseconds, for a historical
	// subscription. -1 uses the publisher default, 0 requests as-fast-as-possible.
	ProcessingInterval int32

	// AssemblyInfo identifies the subscribing application for publisher-side diagnostics.
	AssemblyInfo string

	// ExtraConnectionStringParameters carries any additional "key=value" pairs verbatim.
	ExtraConnectionStringParameters string
}

var settingsDefaults = Settings{
	PublishInterval:              1.0,
	IncludeTime:                  true,
	ProcessingInterval:           -1,
	EnableTimeReasonabilityCheck: true,
	LagTime:                      5.0,
	LeadTime:                     5.0,
}

// NewSettings creates a new Settings instance initialized with default values.
func NewSettings() *Settings {
	settings := settingsDefaults
	return &settings
}
