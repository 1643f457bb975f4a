//******************************************************************************************************
//  FrameCodec.go - Gbtc
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
//  07/31/2026 - Generated original version of source code, mirroring the read-side buffering
//       DataSubscriber performs inline in its command-channel response loop, but factored into a
//       reusable codec shared by both publisher and subscriber.
//
//******************************************************************************************************

package transport

import (
	"errors"

	"github.com/gridstream/sttp/bytecodec"
)

// MaxFrameLength is the largest payload length either side of the protocol will honor; a header
// declaring more than this is treated as a framing error rather than an allocation request.
const MaxFrameLength = 16 * 1024 * 1024

// ErrFrameTooLarge is returned when a frame header declares a payload beyond MaxFrameLength.
var ErrFrameTooLarge = errors.New("transport: frame payload exceeds maximum frame length")

// ResponseFrame is one reassembled server-to-client message: a response code, the command byte it
// responds to (zero for unsolicited responses), and the payload bytes that followed the header.
type ResponseFrame struct {
	ResponseCode ServerResponseEnum
	InResponseTo ServerCommandEnum
	Payload      []byte
}

// CommandFrame is one reassembled client-to-server message: a command byte and its payload bytes.
type CommandFrame struct {
	Command ServerCommandEnum
	Payload []byte
}

// ResponseFrameReader accumulates bytes read from a server-to-client stream and yields each
// ResponseFrame from Feed once that complete frame has arrived, per spec: peek the 6-byte header
// once available to compute the frame's full length, then deliver the frame only once the
// accumulated length meets that total — never a partial frame, never a length decided early.
type ResponseFrameReader struct {
	buffer []byte
}

// NewResponseFrameReader creates an empty ResponseFrameReader.
func NewResponseFrameReader() *ResponseFrameReader {
	return &ResponseFrameReader{}
}

// Feed appends newly read bytes to the reader's accumulator and returns every complete frame that
// can now be extracted, in arrival order. Any residual partial frame remains buffered for the next call.
func (r *ResponseFrameReader) Feed(data []byte) ([]ResponseFrame, error) {
	r.buffer = append(r.buffer, data...)

	var frames []ResponseFrame

	for {
		if uint32(len(r.buffer)) < ResponseHeaderSize {
			return frames, nil
		}

		payloadLength, err := bytecodec.UInt32(r.buffer[2:6])

		if err != nil {
			return frames, err
		}

		if payloadLength > MaxFrameLength {
			r.buffer = nil
			return frames, ErrFrameTooLarge
		}

		totalLength := ResponseHeaderSize + payloadLength

		if uint32(len(r.buffer)) < totalLength {
			return frames, nil
		}

		payload := make([]byte, payloadLength)
		copy(payload, r.buffer[ResponseHeaderSize:totalLength])

		frames = append(frames, ResponseFrame{
			ResponseCode: ServerResponseEnum(r.buffer[0]),
			InResponseTo: ServerCommandEnum(r.buffer[1]),
			Payload:      payload,
		})

		r.buffer = r.buffer[totalLength:]
	}
}

// EncodeResponse serializes a complete server-to-client frame for the given response code, the
// command it answers (zero when unsolicited), and payload.
func EncodeResponse(responseCode ServerResponseEnum, inResponseTo ServerCommandEnum, payload []byte) []byte {
	frame := make([]byte, ResponseHeaderSize+uint32(len(payload)))

	frame[0] = byte(responseCode)
	frame[1] = byte(inResponseTo)
	bytecodec.PutUInt32(frame[2:6], uint32(len(payload)))
	copy(frame[ResponseHeaderSize:], payload)

	return frame
}

// CommandFrameReader is the client-to-server mirror of ResponseFrameReader, used by a DataPublisher
// reading commands from a connected subscriber.
type CommandFrameReader struct {
	buffer []byte
}

// NewCommandFrameReader creates an empty CommandFrameReader.
func NewCommandFrameReader() *CommandFrameReader {
	return &CommandFrameReader{}
}

// Feed appends newly read bytes to the reader's accumulator and returns every complete frame that
// can now be extracted, in arrival order.
func (r *CommandFrameReader) Feed(data []byte) ([]CommandFrame, error) {
	r.buffer = append(r.buffer, data...)

	var frames []CommandFrame

	for {
		if uint32(len(r.buffer)) < CommandHeaderSize {
			return frames, nil
		}

		payloadLength, err := bytecodec.UInt32(r.buffer[1:5])

		if err != nil {
			return frames, err
		}

		if payloadLength > MaxFrameLength {
			r.buffer = nil
			return frames, ErrFrameTooLarge
		}

		totalLength := CommandHeaderSize + payloadLength

		if uint32(len(r.buffer)) < totalLength {
			return frames, nil
		}

		payload := make([]byte, payloadLength)
		copy(payload, r.buffer[CommandHeaderSize:totalLength])

		frames = append(frames, CommandFrame{
			Command: ServerCommandEnum(r.buffer[0]),
			Payload: payload,
		})

		r.buffer = r.buffer[totalLength:]
	}
}

// EncodeCommand serializes a complete client-to-server frame for the given command and payload.
func EncodeCommand(command ServerCommandEnum, payload []byte) []byte {
	frame := make([]byte, CommandHeaderSize+uint32(len(payload)))

	frame[0] = byte(command)
	bytecodec.PutUInt32(frame[1:5], uint32(len(payload)))
	copy(frame[CommandHeaderSize:], payload)

	return frame
}
