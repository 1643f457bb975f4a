//******************************************************************************************************
//  Metrics.go - Gbtc
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
//  07/31/2026 - Generated original version of source code, the publisher-side counterpart of
//       sttp/Metrics.go's registration pattern, under subsystem "publisher" instead of "goapi".
//
//******************************************************************************************************

package publisher

import "github.com/prometheus/client_golang/prometheus"

var (
	pmClientsConnected prometheus.Gauge
	pmClientsTotal     prometheus.Counter

	pmFramesReceived prometheus.Counter
	pmFramesSent     prometheus.Counter
	pmParseErrors    prometheus.Counter

	pmBufferBlockRetransmits prometheus.Counter
	pmCipherRotations        prometheus.Counter

	pmMeasurementsPublished prometheus.Counter
)

func init() {
	pmClientsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "clients_connected",
		Help:      "The number of subscriber connections currently accepted",
	})

	pmClientsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "clients_total_cnt",
		Help:      "The number of subscriber connections accepted since program start",
	})

	pmFramesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "frames_received_cnt",
		Help:      "The number of command frames received from subscribers since program start",
	})

	pmFramesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "frames_sent_cnt",
		Help:      "The number of response frames sent to subscribers since program start",
	})

	pmParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "parse_error_cnt",
		Help:      "The number of command frame parse errors since program start",
	})

	pmBufferBlockRetransmits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "buffer_block_retransmit_cnt",
		Help:      "The number of buffer blocks retransmitted due to acknowledgment timeout since program start",
	})

	pmCipherRotations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "cipher_rotation_cnt",
		Help:      "The number of cipher key rotations performed since program start",
	})

	pmMeasurementsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sttp",
		Subsystem: "publisher",
		Name:      "measurements_published_cnt",
		Help:      "The number of measurement values published to subscribers since program start",
	})

	prometheus.MustRegister(
		pmClientsConnected,
		pmClientsTotal,
		pmFramesReceived,
		pmFramesSent,
		pmParseErrors,
		pmBufferBlockRetransmits,
		pmCipherRotations,
		pmMeasurementsPublished,
	)
}
