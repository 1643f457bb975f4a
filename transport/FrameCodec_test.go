//******************************************************************************************************
//  FrameCodec_test.go - Gbtc
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

package transport

import "testing"

func TestResponseFrameReaderSingleExactRead(t *testing.T) {
	frame := EncodeResponse(ServerResponse.Succeeded, ServerCommand.Subscribe, []byte("ok"))

	reader := NewResponseFrameReader()
	frames, err := reader.Feed(frame)

	if err != nil {
		t.Fatalf("TestResponseFrameReaderSingleExactRead: unexpected error: %v", err)
	}

	if len(frames) != 1 {
		t.Fatalf("TestResponseFrameReaderSingleExactRead: expected 1 frame, got %d", len(frames))
	}

	if frames[0].ResponseCode != ServerResponse.Succeeded || frames[0].InResponseTo != ServerCommand.Subscribe {
		t.Fatalf("TestResponseFrameReaderSingleExactRead: unexpected frame header")
	}

	if string(frames[0].Payload) != "ok" {
		t.Fatalf("TestResponseFrameReaderSingleExactRead: expected payload \"ok\", got %q", frames[0].Payload)
	}

	if len(reader.buffer) != 0 {
		t.Fatalf("TestResponseFrameReaderSingleExactRead: expected zero residual bytes, got %d", len(reader.buffer))
	}
}

func TestResponseFrameReaderSplitAcrossReads(t *testing.T) {
	frame := EncodeResponse(ServerResponse.DataPacket, 0, []byte("payload-bytes"))

	reader := NewResponseFrameReader()

	frames, err := reader.Feed(frame[:3])

	if err != nil || len(frames) != 0 {
		t.Fatalf("TestResponseFrameReaderSplitAcrossReads: expected no frames from a partial header, got %d (err: %v)", len(frames), err)
	}

	frames, err = reader.Feed(frame[3:8])

	if err != nil || len(frames) != 0 {
		t.Fatalf("TestResponseFrameReaderSplitAcrossReads: expected no frames before full payload arrives, got %d (err: %v)", len(frames), err)
	}

	frames, err = reader.Feed(frame[8:])

	if err != nil {
		t.Fatalf("TestResponseFrameReaderSplitAcrossReads: unexpected error: %v", err)
	}

	if len(frames) != 1 || string(frames[0].Payload) != "payload-bytes" {
		t.Fatalf("TestResponseFrameReaderSplitAcrossReads: expected reassembled payload, got %+v", frames)
	}
}

func TestResponseFrameReaderMultipleFramesOneRead(t *testing.T) {
	first := EncodeResponse(ServerResponse.Succeeded, ServerCommand.MetadataRefresh, nil)
	second := EncodeResponse(ServerResponse.NoOP, 0, nil)

	reader := NewResponseFrameReader()
	frames, err := reader.Feed(append(first, second...))

	if err != nil {
		t.Fatalf("TestResponseFrameReaderMultipleFramesOneRead: unexpected error: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("TestResponseFrameReaderMultipleFramesOneRead: expected 2 frames, got %d", len(frames))
	}

	if frames[0].ResponseCode != ServerResponse.Succeeded || frames[1].ResponseCode != ServerResponse.NoOP {
		t.Fatalf("TestResponseFrameReaderMultipleFramesOneRead: frames arrived out of order")
	}
}

func TestResponseFrameReaderOversizedFrame(t *testing.T) {
	header := make([]byte, ResponseHeaderSize)
	header[0] = byte(ServerResponse.DataPacket)
	header[2] = 0xFF // forces an implausibly large declared length via the length field's high byte

	reader := NewResponseFrameReader()
	_, err := reader.Feed(append(header, make([]byte, 10)...))

	if err == nil {
		t.Fatalf("TestResponseFrameReaderOversizedFrame: expected ErrFrameTooLarge")
	}
}

func TestCommandFrameRoundTrip(t *testing.T) {
	frame := EncodeCommand(ServerCommand.DefineOperationalModes, []byte{0x00, 0x00, 0x02, 0x00})

	reader := NewCommandFrameReader()
	frames, err := reader.Feed(frame)

	if err != nil {
		t.Fatalf("TestCommandFrameRoundTrip: unexpected error: %v", err)
	}

	if len(frames) != 1 || frames[0].Command != ServerCommand.DefineOperationalModes {
		t.Fatalf("TestCommandFrameRoundTrip: expected 1 DefineOperationalModes frame, got %+v", frames)
	}

	if len(frames[0].Payload) != 4 {
		t.Fatalf("TestCommandFrameRoundTrip: expected 4-byte payload, got %d", len(frames[0].Payload))
	}
}
