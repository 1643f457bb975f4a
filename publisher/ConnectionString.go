//******************************************************************************************************
//  ConnectionString.go - Gbtc
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
//  07/31/2026 - Generated original version of source code, the receiving side of
//       subscriber/ConnectionString.go: parses the "key=value;" payload a Subscribe command carries
//       rather than building one.
//
//******************************************************************************************************

package publisher

import (
	"strconv"
	"strings"
)

// subscriptionRequest is the parsed form of a Subscribe command's connection string.
type subscriptionRequest struct {
	FilterExpression         string
	Throttled                bool
	PublishInterval          float64
	UdpPort                  uint16
	IncludeTime              bool
	LagTime                  float64
	LeadTime                 float64
	UseLocalClockAsRealTime  bool
	ProcessingInterval       int32
	UseMillisecondResolution bool
	RequestNaNValueFilter    bool
	StartTime                string
	StopTime                 string
	ConstraintParameters     string
	AssemblyInfo             string
}

var subscriptionRequestDefaults = subscriptionRequest{
	PublishInterval:    1.0,
	IncludeTime:        true,
	LagTime:            5.0,
	LeadTime:           5.0,
	ProcessingInterval: -1,
}

// parseSubscriptionRequest decodes the connection string payload carried by a Subscribe command.
func parseSubscriptionRequest(raw string) *subscriptionRequest {
	request := subscriptionRequestDefaults
	values := parseConnectionString(raw)

	if value, ok := values["filterexpression"]; ok {
		request.FilterExpression = value
	} else if value, ok := values["inputmeasurementkeys"]; ok {
		request.FilterExpression = value
	}

	if value, ok := values["tracklatestmeasurements"]; ok {
		request.Throttled, _ = strconv.ParseBool(value)
	}

	if value, ok := values["publishinterval"]; ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			request.PublishInterval = parsed
		}
	}

	if value, ok := values["datachannel"]; ok {
		request.UdpPort = parseUdpPort(value)
	}

	if value, ok := values["includetime"]; ok {
		request.IncludeTime, _ = strconv.ParseBool(value)
	}

	if value, ok := values["lagtime"]; ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			request.LagTime = parsed
		}
	}

	if value, ok := values["leadtime"]; ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			request.LeadTime = parsed
		}
	}

	if value, ok := values["uselocalclockasrealtime"]; ok {
		request.UseLocalClockAsRealTime, _ = strconv.ParseBool(value)
	}

	if value, ok := values["processinginterval"]; ok {
		if parsed, err := strconv.ParseInt(value, 10, 32); err == nil {
			request.ProcessingInterval = int32(parsed)
		}
	}

	if value, ok := values["usemillisecondresolution"]; ok {
		request.UseMillisecondResolution, _ = strconv.ParseBool(value)
	}

	if value, ok := values["requestnanvaluefilter"]; ok {
		request.RequestNaNValueFilter, _ = strconv.ParseBool(value)
	}

	if value, ok := values["starttimeconstraint"]; ok {
		request.StartTime = value
	}

	if value, ok := values["stoptimeconstraint"]; ok {
		request.StopTime = value
	}

	if value, ok := values["timeconstraintparameters"]; ok {
		request.ConstraintParameters = value
	}

	if value, ok := values["assemblyinfo"]; ok {
		request.AssemblyInfo = value
	}

	return &request
}

// parseUdpPort extracts the localport value from a dataChannel connection string fragment, e.g.
// "localport=9600". Returns 0, the TCP-only sentinel, when absent or malformed.
func parseUdpPort(dataChannel string) uint16 {
	for _, pair := range strings.Split(dataChannel, ";") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)

		if len(parts) != 2 {
			continue
		}

		if strings.ToLower(strings.TrimSpace(parts[0])) != "localport" {
			continue
		}

		if port, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 16); err == nil {
			return uint16(port)
		}
	}

	return 0
}

// parseConnectionString splits a "key=value;" connection string into a lowercase-keyed map, honoring
// brace-delimited values (e.g. "inputMeasurementKeys={G1;G2}") that may themselves contain ';' or '='.
func parseConnectionString(raw string) map[string]string {
	values := make(map[string]string)

	for _, pair := range splitConnectionPairs(raw) {
		pair = strings.TrimSpace(pair)

		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, "=", 2)

		if len(parts) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		value = strings.TrimPrefix(value, "{")
		value = strings.TrimSuffix(value, "}")
		values[key] = value
	}

	return values
}

// splitConnectionPairs splits raw on ';' that are not nested inside a '{...}' group.
func splitConnectionPairs(raw string) []string {
	var segments []string
	var current strings.Builder
	depth := 0

	for _, r := range raw {
		switch r {
		case '{':
			depth++
			current.WriteRune(r)
		case '}':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case ';':
			if depth == 0 {
				segments = append(segments, current.String())
				current.Reset()
				continue
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		segments = append(segments, current.String())
	}

	return segments
}
