package sub

import (
	"encoding/binary"
	"testing"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

func encodeSingleMessage(t *testing.T, smm *api.SingleMessageMetadata, payload []byte) []byte {
	t.Helper()
	metaBytes, err := proto.Marshal(smm)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	buf := make([]byte, 4+len(metaBytes)+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(metaBytes)))
	copy(buf[4:], metaBytes)
	copy(buf[4+len(metaBytes):], payload)
	return buf
}

func i32(v int32) *int32    { return &v }
func str(v string) *string  { return &v }
func u64(v uint64) *uint64  { return &v }

func TestDecodeBatchSplitsSubMessages(t *testing.T) {
	first := encodeSingleMessage(t, &api.SingleMessageMetadata{
		PayloadSize:  i32(5),
		PartitionKey: str("k1"),
		EventTime:    u64(100),
	}, []byte("hello"))
	second := encodeSingleMessage(t, &api.SingleMessageMetadata{
		PayloadSize: i32(5),
		Properties: []*api.KeyValue{
			{Key: str("a"), Value: str("b")},
		},
	}, []byte("world"))

	payload := append(append([]byte{}, first...), second...)

	entries, err := decodeBatch(payload, 2)
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if string(entries[0].Payload) != "hello" {
		t.Errorf("entry 0 payload = %q, want %q", entries[0].Payload, "hello")
	}
	if entries[0].Key != "k1" {
		t.Errorf("entry 0 key = %q, want %q", entries[0].Key, "k1")
	}
	if entries[0].EventTime != 100 {
		t.Errorf("entry 0 event time = %d, want 100", entries[0].EventTime)
	}
	if string(entries[1].Payload) != "world" {
		t.Errorf("entry 1 payload = %q, want %q", entries[1].Payload, "world")
	}
	if entries[1].Properties["a"] != "b" {
		t.Errorf("entry 1 properties[a] = %q, want %q", entries[1].Properties["a"], "b")
	}
}

func TestDecodeBatchTruncatedMetadata(t *testing.T) {
	if _, err := decodeBatch([]byte{0, 0, 0, 10, 1, 2, 3}, 1); err == nil {
		t.Fatal("expected error for truncated metadata, got nil")
	}
}

func TestDecodeBatchTruncatedPayload(t *testing.T) {
	entry := encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(100)}, []byte("short"))
	if _, err := decodeBatch(entry, 1); err == nil {
		t.Fatal("expected error for truncated payload, got nil")
	}
}

func TestDecodeBatchTruncatedHeader(t *testing.T) {
	if _, err := decodeBatch([]byte{0, 0}, 1); err == nil {
		t.Fatal("expected error for truncated 4-byte header, got nil")
	}
}
