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
//  07/31/2026 - Generated original version of source code. sttp/transport/SubscriptionInfo.go never
//       grew the code that serializes it to the Subscribe command's "key=value;" connection string;
//       this builds that string from Settings.
//
//******************************************************************************************************

package subscriber

import (
	"fmt"
	"strconv"
	"strings"
)

// buildConnectionString renders settings as the "key=value;" connection string carried by the
// Subscribe command payload.
func buildConnectionString(settings *Settings) string {
	var pairs []string

	add := func(key, value string) {
		pairs = append(pairs, key+"="+value)
	}

	add("trackLatestMeasurements", strconv.FormatBool(settings.Throttled))
	add("publishInterval", strconv.FormatFloat(settings.PublishInterval, 'f', -1, 64))
	add("includeTime", strconv.FormatBool(settings.IncludeTime))
	add("lagTime", strconv.FormatFloat(settings.LagTime, 'f', -1, 64))
	add("leadTime", strconv.FormatFloat(settings.LeadTime, 'f', -1, 64))
	add("useLocalClockAsRealTime", strconv.FormatBool(settings.UseLocalClockAsRealTime))
	add("processingInterval", strconv.Itoa(int(settings.ProcessingInterval)))
	add("useMillisecondResolution", strconv.FormatBool(settings.UseMillisecondResolution))
	add("requestNaNValueFilter", strconv.FormatBool(settings.RequestNaNValueFilter))

	if settings.FilterExpression != "" {
		add("inputMeasurementKeys", "{"+settings.FilterExpression+"}")
	}

	if settings.UdpPort != 0 {
		add("dataChannel", fmt.Sprintf("{localport=%d}", settings.UdpPort))
	}

	if settings.StartTime != "" {
		add("startTimeConstraint", settings.StartTime)
	}

	if settings.StopTime != "" {
		add("stopTimeConstraint", settings.StopTime)
	}

	if settings.ConstraintParameters != "" {
		add("timeConstraintParameters", settings.ConstraintParameters)
	}

	if settings.AssemblyInfo != "" {
		add("assemblyInfo", "{"+settings.AssemblyInfo+"}")
	}

	if settings.ExtraConnectionStringParameters != "" {
		pairs = append(pairs, settings.ExtraConnectionStringParameters)
	}

	return strings.Join(pairs, ";")
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
