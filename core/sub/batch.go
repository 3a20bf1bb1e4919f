package sub

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// batchEntry is one sub-message carved out of a batched entry's payload.
type batchEntry struct {
	Payload    []byte
	Key        string
	Properties map[string]string
	EventTime  uint64
}

// decodeBatch splits payload into numMessages sub-messages, each framed
// as [metadataSize uint32 BE][SingleMessageMetadata][payload bytes].
func decodeBatch(payload []byte, numMessages int32) ([]batchEntry, error) {
	entries := make([]batchEntry, 0, numMessages)
	buf := payload

	for i := int32(0); i < numMessages; i++ {
		if len(buf) < 4 {
			return nil, fmt.Errorf("sub: truncated batch at sub-message %d", i)
		}
		metaSize := binary.BigEndian.Uint32(buf[:4])
		buf = buf[4:]

		if uint32(len(buf)) < metaSize {
			return nil, fmt.Errorf("sub: truncated batch metadata at sub-message %d", i)
		}
		var smm api.SingleMessageMetadata
		if err := proto.Unmarshal(buf[:metaSize], &smm); err != nil {
			return nil, fmt.Errorf("sub: corrupt single message metadata at sub-message %d: %w", i, err)
		}
		buf = buf[metaSize:]

		payloadSize := 0
		if smm.PayloadSize != nil {
			payloadSize = int(*smm.PayloadSize)
		}
		if len(buf) < payloadSize {
			return nil, fmt.Errorf("sub: truncated batch payload at sub-message %d", i)
		}

		entries = append(entries, batchEntry{
			Payload:    buf[:payloadSize],
			Key:        smm.GetPartitionKey(),
			Properties: kvToMap(smm.GetProperties()),
			EventTime:  smm.GetEventTime(),
		})
		buf = buf[payloadSize:]
	}

	return entries, nil
}

func kvToMap(kvs []*api.KeyValue) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.GetKey()] = kv.GetValue()
	}
	return m
}
