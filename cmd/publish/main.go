//******************************************************************************************************
//  main.go - Gbtc
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
//  07/31/2026 - Generated original version of source code. sttp-goapi never grew a DataPublisher, so
//       this mirrors cmd/subscribe/main.go's shape for the publish side, seeding a small
//       MeasurementDetail table and driving Publisher.PublishMeasurements from a timer instead of a
//       real data source.
//
//******************************************************************************************************

// Command publish is a minimal STTP data publisher: it serves a handful of synthetic signals to
// any connecting subscriber, exposing Prometheus metrics alongside the command channel listener.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridstream/sttp/guid"
	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/metadata"
	"github.com/gridstream/sttp/publisher"
	"github.com/gridstream/sttp/stateflags"
	"github.com/gridstream/sttp/ticks"
)

const signalCount = 4

func main() {
	listenAddress, metricsAddress := parseCmdLineArgs()

	config := publisher.NewConfig()
	config.ListenAddress = listenAddress

	pub := publisher.NewPublisher(config)
	pub.StatusMessageCallback = func(message string) { fmt.Println(message) }
	pub.ErrorMessageCallback = func(message string) { fmt.Fprintln(os.Stderr, message) }

	signalIDs := seedMetadata(pub)

	if err := pub.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to start publisher: "+err.Error())
		os.Exit(1)
	}

	go serveMetrics(metricsAddress)

	publishLoop(pub, signalIDs)
}

// seedMetadata installs a MeasurementDetail table describing signalCount synthetic signals and
// returns their generated identifiers in publish order.
func seedMetadata(pub *publisher.Publisher) []guid.Guid {
	dataSet := metadata.NewDataSet()
	table := dataSet.CreateTable("MeasurementDetail")

	table.AddColumn(table.CreateColumn("SignalID", metadata.DataType.Guid, ""))
	table.AddColumn(table.CreateColumn("PointTag", metadata.DataType.String, ""))
	table.AddColumn(table.CreateColumn("Source", metadata.DataType.String, ""))
	table.AddColumn(table.CreateColumn("ID", metadata.DataType.UInt64, ""))

	signalIDs := make([]guid.Guid, signalCount)

	for i := 0; i < signalCount; i++ {
		signalID := guid.New()
		signalIDs[i] = signalID

		row := table.CreateRow()
		row.SetValueByName("SignalID", signalID)
		row.SetValueByName("PointTag", fmt.Sprintf("DEMO:SIGNAL%d", i+1))
		row.SetValueByName("Source", "DEMO")
		row.SetValueByName("ID", uint64(i+1))

		table.AddRow(row)
	}

	pub.SetMetadata(dataSet)

	return signalIDs
}

// publishLoop sends a synthetic sine-wave sample for each seeded signal once per second until the
// process is interrupted.
func publishLoop(pub *publisher.Publisher, signalIDs []guid.Guid) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	start := time.Now()

	for now := range ticker.C {
		elapsed := now.Sub(start).Seconds()
		measurements := make([]measurement.Measurement, len(signalIDs))

		for i, signalID := range signalIDs {
			frequency := 0.1 * float64(i+1)
			measurements[i] = measurement.Measurement{
				SignalID:  signalID,
				Value:     math.Sin(2*math.Pi*frequency*elapsed) + rand.NormFloat64()*0.01,
				Timestamp: ticks.FromTime(now),
				Flags:     stateflags.Normal,
			}
		}

		pub.PublishMeasurements(measurements)
	}
}

func serveMetrics(address string) {
	http.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(address, nil); err != nil {
		fmt.Fprintln(os.Stderr, "metrics server stopped: "+err.Error())
	}
}

func parseCmdLineArgs() (string, string) {
	args := os.Args

	listenAddress := ":6165"
	metricsAddress := ":9590"

	if len(args) > 1 {
		listenAddress = args[1]
	}

	if len(args) > 2 {
		metricsAddress = args[2]
	}

	return listenAddress, metricsAddress
}
