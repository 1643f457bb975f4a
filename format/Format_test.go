//******************************************************************************************************
//  Format_test.go - Gbtc
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

package format

import "testing"

func TestInt(t *testing.T) {
	if got := Int(1234567); got != "1,234,567" {
		t.Fatalf("TestInt: expected \"1,234,567\", got %q", got)
	}

	if got := Int(-1234); got != "-1,234" {
		t.Fatalf("TestInt: expected \"-1,234\", got %q", got)
	}

	if got := Int(42); got != "42" {
		t.Fatalf("TestInt: expected \"42\", got %q", got)
	}
}

func TestUInt64(t *testing.T) {
	if got := UInt64(9876543210); got != "9,876,543,210" {
		t.Fatalf("TestUInt64: expected \"9,876,543,210\", got %q", got)
	}
}

func TestFloat(t *testing.T) {
	if got := Float(1234567.891, 2); got != "1,234,567.89" {
		t.Fatalf("TestFloat: expected \"1,234,567.89\", got %q", got)
	}

	if got := Float(-1234.5, 1); got != "-1,234.5" {
		t.Fatalf("TestFloat: expected \"-1,234.5\", got %q", got)
	}
}

func TestFloatWith(t *testing.T) {
	if got := FloatWith(1234.5, 1, ',', '.'); got != "1.234,5" {
		t.Fatalf("TestFloatWith: expected \"1.234,5\", got %q", got)
	}
}
