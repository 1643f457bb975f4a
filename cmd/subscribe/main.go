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
//  07/31/2026 - Generated original version of source code, patterned after
//       examples/SimpleSubscribe/SimpleSubscribe.go but built against subscriber.Subscriber instead of
//       sttp.SubscriberBase.
//
//******************************************************************************************************

// Command subscribe is a minimal STTP data subscriber: it connects to a publisher, requests
// metadata, subscribes to a filter expression, and prints received measurements to the console.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gridstream/sttp/measurement"
	"github.com/gridstream/sttp/metadata"
	"github.com/gridstream/sttp/subscriber"
)

func main() {
	address, filterExpression := parseCmdLineArgs()

	sub := subscriber.NewSubscriber()
	defer sub.Close()

	sub.SetMetadataReceiver(receivedMetadata)
	sub.SetNewMeasurementsReceiver(receivedNewMeasurements(sub))

	config := subscriber.NewConfig()

	if err := sub.Dial(address, config); err != nil {
		fmt.Fprintln(os.Stderr, "connection failed: "+err.Error())
		os.Exit(1)
	}

	if err := sub.Subscribe(filterExpression, subscriber.NewSettings()); err != nil {
		fmt.Fprintln(os.Stderr, "subscribe failed: "+err.Error())
	}

	reader := bufio.NewReader(os.Stdin)
	reader.ReadRune()
}

func receivedMetadata(dataSet *metadata.DataSet) {
	_ = dataSet // summary already logged by Subscriber's default status logger
}

var lastMessageDisplay time.Time

func receivedNewMeasurements(sub *subscriber.Subscriber) func([]measurement.Measurement) {
	return func(measurements []measurement.Measurement) {
		if time.Since(lastMessageDisplay).Seconds() < 5.0 {
			return
		}

		defer func() { lastMessageDisplay = time.Now() }()

		if lastMessageDisplay.IsZero() {
			sub.StatusMessage("Receiving measurements...")
			return
		}

		var message strings.Builder

		message.WriteString("Timestamp: ")
		message.WriteString(measurements[0].DateTime().Format("2006-01-02 15:04:05.999999999"))
		message.WriteRune('\n')
		message.WriteString("\tSignal ID\t\t\t\tValue\n")

		for i := 0; i < len(measurements); i++ {
			m := measurements[i]

			message.WriteRune('\t')
			message.WriteString(m.SignalID.String())
			message.WriteRune('\t')
			message.WriteString(strconv.FormatFloat(m.Value, 'f', 6, 64))
			message.WriteRune('\n')
		}

		sub.StatusMessage(message.String())
	}
}

func parseCmdLineArgs() (string, string) {
	args := os.Args

	if len(args) < 3 {
		fmt.Println("Usage:")
		fmt.Println("    subscribe HOST:PORT FILTEREXPRESSION")
		fmt.Println(`    subscribe localhost:6165 "FILTER MeasurementDetail WHERE Source = 'DEMO' TOP 5"`)
		os.Exit(1)
	}

	return args[1], args[2]
}
