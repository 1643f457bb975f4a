//******************************************************************************************************
//  Thread_test.go - Gbtc
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

package thread

import (
	"sync/atomic"
	"testing"
)

func TestThreadJoinWaitsForCompletion(t *testing.T) {
	var ran int32

	thread := NewThread(func() {
		atomic.StoreInt32(&ran, 1)
	})

	thread.Start()
	thread.Join()

	if atomic.LoadInt32(&ran) != 1 {
		t.Fatalf("TestThreadJoinWaitsForCompletion: expected body to have run before Join returned")
	}
}

func TestNilBodyIsNoOp(t *testing.T) {
	thread := NewThread(nil)
	thread.Start()
	thread.Join()
}
