// Copyright 2018 Comcast Cable Communications Management, LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// MaxFrameSize is the maximum allowable size of a single frame, per the
// broker's binary protocol.
const MaxFrameSize = 5 * 1024 * 1024 // 5mb

// magicNumber identifies an optional checksum following a payload command's
// command section.
var magicNumber = [...]byte{0x0e, 0x01}

// Frame represents one frame of the broker's binary protocol: a required
// command and, for "payload" commands, metadata plus a message payload.
//
//	+------------------------------------------------------------------------+
//	| totalSize (uint32) | commandSize (uint32) | message (protobuf encoded) |
//	+------------------------------------------------------------------------+
//
// Payload commands additionally carry:
//
//	+-------------------------------------------------------------------------------------------------+
//	| magicNumber (0x0e01) | checksum (CRC32-C) | metadataSize (uint32) | metadata | payload           |
//	+-------------------------------------------------------------------------------------------------+
type Frame struct {
	BaseCmd *api.BaseCommand

	// Metadata and Payload are only present for "payload" commands (MESSAGE
	// and SEND); their absence means this is a "simple" command frame.
	Metadata *api.MessageMetadata
	Payload  []byte
}

// Equal reports whether other is structurally equal to the receiver.
func (f *Frame) Equal(other Frame) bool {
	if !proto.Equal(f.BaseCmd, other.BaseCmd) {
		return false
	}
	if !proto.Equal(f.Metadata, other.Metadata) {
		return false
	}
	return bytes.Equal(f.Payload, other.Payload)
}

// Decode reads one frame from r into the receiver.
func (f *Frame) Decode(r io.Reader) error {
	var err error
	buf32 := make([]byte, 4)

	if _, err = io.ReadFull(r, buf32); err != nil {
		return err
	}
	totalSize := binary.BigEndian.Uint32(buf32)

	frameSize := int(totalSize) + 4
	if frameSize > MaxFrameSize {
		return fmt.Errorf("frame size (%d) cannot be greater than max frame size (%d)", frameSize, MaxFrameSize)
	}

	lr := &io.LimitedReader{N: int64(totalSize), R: r}

	if _, err = io.ReadFull(lr, buf32); err != nil {
		return err
	}
	cmdSize := binary.BigEndian.Uint32(buf32)
	if cmdSize > MaxFrameSize {
		return fmt.Errorf("frame command size (%d) cannot be greater than max frame size (%d)", cmdSize, MaxFrameSize)
	}

	cmdBuf := make([]byte, cmdSize)
	if _, err = io.ReadFull(lr, cmdBuf); err != nil {
		return err
	}
	f.BaseCmd = new(api.BaseCommand)
	if err = proto.Unmarshal(cmdBuf, f.BaseCmd); err != nil {
		return err
	}

	if lr.N <= 0 {
		// simple command, no metadata/payload
		return nil
	}

	if _, err = io.ReadFull(lr, buf32); err != nil {
		return err
	}

	var chksum frameChecksum
	var expectedChksum []byte
	if magicNumber[0] == buf32[0] && magicNumber[1] == buf32[1] {
		expectedChksum = make([]byte, 4)
		expectedChksum[0] = buf32[2]
		expectedChksum[1] = buf32[3]

		if _, err = io.ReadFull(lr, expectedChksum[2:]); err != nil {
			return err
		}

		lr.R = io.TeeReader(lr.R, &chksum)

		if _, err = io.ReadFull(lr, buf32); err != nil {
			return err
		}
	}

	metadataSize := binary.BigEndian.Uint32(buf32)
	if metadataSize > MaxFrameSize {
		return fmt.Errorf("frame metadata size (%d) cannot be greater than max frame size (%d)", metadataSize, MaxFrameSize)
	}

	metaBuf := make([]byte, metadataSize)
	if _, err = io.ReadFull(lr, metaBuf); err != nil {
		return err
	}
	f.Metadata = new(api.MessageMetadata)
	if err = proto.Unmarshal(metaBuf, f.Metadata); err != nil {
		return err
	}

	if lr.N > 0 {
		if lr.N > MaxFrameSize {
			return fmt.Errorf("frame payload size (%d) cannot be greater than max frame size (%d)", lr.N, MaxFrameSize)
		}
		f.Payload = make([]byte, lr.N)
		if _, err = io.ReadFull(lr, f.Payload); err != nil {
			return err
		}
	}

	if expectedChksum != nil {
		if computed := chksum.compute(); !bytes.Equal(computed, expectedChksum) {
			return fmt.Errorf("checksum mismatch: computed (0x%X) does not match given checksum (0x%X)", computed, expectedChksum)
		}
	}

	return nil
}

// Encode writes the receiver frame to w.
func (f *Frame) Encode(w io.Writer) error {
	encodedBaseCmd, err := proto.Marshal(f.BaseCmd)
	if err != nil {
		return err
	}
	cmdSize := uint32(len(encodedBaseCmd))

	var metadataSize uint32
	var encodedMetadata []byte
	if f.Metadata != nil {
		if encodedMetadata, err = proto.Marshal(f.Metadata); err != nil {
			return err
		}
		metadataSize = uint32(len(encodedMetadata))
	}

	totalSize := cmdSize + 4
	if metadataSize > 0 {
		totalSize += 6 + metadataSize + 4 + uint32(len(f.Payload))
	}

	if frameSize := totalSize + 4; frameSize > MaxFrameSize {
		return fmt.Errorf("encoded frame size (%d bytes) is larger than max allowed frame size (%d bytes)", frameSize, MaxFrameSize)
	}

	if err = binary.Write(w, binary.BigEndian, totalSize); err != nil {
		return err
	}
	if err = binary.Write(w, binary.BigEndian, cmdSize); err != nil {
		return err
	}
	if _, err = w.Write(encodedBaseCmd); err != nil {
		return err
	}

	if metadataSize == 0 {
		return nil
	}

	if _, err = w.Write(magicNumber[:]); err != nil {
		return err
	}

	var chksum frameChecksum
	if err = binary.Write(&chksum, binary.BigEndian, metadataSize); err != nil {
		return err
	}
	if _, err = chksum.Write(encodedMetadata); err != nil {
		return err
	}
	if _, err = chksum.Write(f.Payload); err != nil {
		return err
	}

	if _, err = w.Write(chksum.compute()); err != nil {
		return err
	}
	if err = binary.Write(w, binary.BigEndian, metadataSize); err != nil {
		return err
	}
	if _, err = w.Write(encodedMetadata); err != nil {
		return err
	}
	_, err = w.Write(f.Payload)
	return err
}
