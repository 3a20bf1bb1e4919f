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

// Package utils holds small helpers shared across the core packages that
// don't belong to any one of them: protocol constants, the async error
// sink producers and consumers report onto, and request id helpers.
package utils

import (
	"fmt"
	"os"
	"testing"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// ClientVersion identifies this library to the broker during CONNECT.
const ClientVersion = "relaybroker-go-client"

// ProtoVersion is the binary protocol version this client speaks.
const ProtoVersion = int32(13)

// UndefRequestID is used to register interest in ERROR responses that
// carry no associated request, such as a CONNECT failure.
const UndefRequestID = ^uint64(0)

// AsyncErrors is the channel type used to report errors encountered by
// background goroutines (session actors, producers) back to whatever is
// managing their lifetime. A nil channel is valid; sends on it are
// dropped.
type AsyncErrors chan error

// Send reports err on the channel without blocking if there's no reader
// and no-ops if the channel is nil.
func (a AsyncErrors) Send(err error) {
	if a == nil || err == nil {
		return
	}
	select {
	case a <- err:
	default:
	}
}

// NewUnexpectedErrMsg builds an error describing an unexpected response
// command type received while correlating a request.
func NewUnexpectedErrMsg(msgType api.BaseCommand_Type, ids ...uint64) error {
	return fmt.Errorf("unexpected response type %s for ids %v", msgType.String(), ids)
}

// PulsarAddr returns the broker address to dial in integration tests,
// read from the PULSAR_ADDR environment variable, skipping the test if
// it's unset.
func PulsarAddr(t *testing.T) string {
	addr := os.Getenv("PULSAR_ADDR")
	if addr == "" {
		t.Skip("PULSAR_ADDR not set, skipping integration test")
	}
	return addr
}
