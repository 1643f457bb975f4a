//******************************************************************************************************
//  Ticks_test.go - Gbtc
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
//******************************************************************************************************

package ticks

import (
	"testing"
	"time"
)

func TestTimeRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	tk := FromTime(now)

	if IsLeapSecond(tk) {
		t.Fatalf("TestTimeRoundTrip: fresh tick value unexpectedly flagged as leap second")
	}

	back := ToTime(tk)

	if back.UnixNano()/100 != now.UnixNano()/100 {
		t.Fatalf("TestTimeRoundTrip: round trip mismatch, got %v, want %v", back, now)
	}
}

func TestLeapSecondFlag(t *testing.T) {
	tk := FromTime(time.Now().UTC())
	leap := SetLeapSecond(tk)

	if !IsLeapSecond(leap) {
		t.Fatalf("TestLeapSecondFlag: expected leap second flag to be set")
	}

	if (leap &^ LeapSecondFlag) != tk {
		t.Fatalf("TestLeapSecondFlag: leap second flag corrupted value bits")
	}
}

func TestLeapSecondDirection(t *testing.T) {
	tk := FromTime(time.Now().UTC())

	if IsNegativeLeapSecond(tk) {
		t.Fatalf("TestLeapSecondDirection: direction bit must be ignored on a non-leap-second value")
	}

	negative := SetLeapSecondDirection(tk, true)

	if IsNegativeLeapSecond(negative) {
		t.Fatalf("TestLeapSecondDirection: direction bit must be meaningless without the leap second flag")
	}

	leap := SetLeapSecond(tk)
	negativeLeap := SetLeapSecondDirection(leap, true)

	if !IsNegativeLeapSecond(negativeLeap) {
		t.Fatalf("TestLeapSecondDirection: expected negative leap second to report true")
	}

	positiveLeap := SetLeapSecondDirection(negativeLeap, false)

	if IsNegativeLeapSecond(positiveLeap) {
		t.Fatalf("TestLeapSecondDirection: expected direction bit to clear back to positive leap")
	}

	if !IsLeapSecond(positiveLeap) {
		t.Fatalf("TestLeapSecondDirection: clearing direction bit must not clear the leap second flag")
	}
}
