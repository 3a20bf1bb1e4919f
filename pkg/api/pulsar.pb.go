// Code generated by protoc-gen-go, mirroring the wire commands of the
// broker's binary protocol. DO NOT EDIT by hand except to add new commands;
// this file exists so the rest of the tree has something to Marshal against
// without depending on a .proto toolchain at build time.

package api

import (
	"fmt"

	proto "github.com/golang/protobuf/proto"
)

// BaseCommand_Type enumerates every command kind carried on the wire.
type BaseCommand_Type int32

const (
	BaseCommand_CONNECT                        BaseCommand_Type = 2
	BaseCommand_CONNECTED                      BaseCommand_Type = 3
	BaseCommand_SUBSCRIBE                      BaseCommand_Type = 4
	BaseCommand_PRODUCER                       BaseCommand_Type = 5
	BaseCommand_SEND                           BaseCommand_Type = 6
	BaseCommand_SEND_RECEIPT                   BaseCommand_Type = 7
	BaseCommand_SEND_ERROR                     BaseCommand_Type = 8
	BaseCommand_MESSAGE                        BaseCommand_Type = 9
	BaseCommand_ACK                            BaseCommand_Type = 10
	BaseCommand_FLOW                           BaseCommand_Type = 11
	BaseCommand_UNSUBSCRIBE                    BaseCommand_Type = 12
	BaseCommand_SUCCESS                        BaseCommand_Type = 13
	BaseCommand_ERROR                          BaseCommand_Type = 14
	BaseCommand_CLOSE_PRODUCER                 BaseCommand_Type = 15
	BaseCommand_CLOSE_CONSUMER                 BaseCommand_Type = 16
	BaseCommand_PRODUCER_SUCCESS               BaseCommand_Type = 17
	BaseCommand_PING                           BaseCommand_Type = 18
	BaseCommand_PONG                           BaseCommand_Type = 19
	BaseCommand_REDELIVER_UNACKNOWLEDGED_MESSAGES BaseCommand_Type = 20
	BaseCommand_LOOKUP                         BaseCommand_Type = 21
	BaseCommand_LOOKUP_RESPONSE                BaseCommand_Type = 22
	BaseCommand_SEEK                           BaseCommand_Type = 26
	BaseCommand_GET_LAST_MESSAGE_ID            BaseCommand_Type = 27
	BaseCommand_GET_LAST_MESSAGE_ID_RESPONSE   BaseCommand_Type = 28
	BaseCommand_ACTIVE_CONSUMER_CHANGE         BaseCommand_Type = 33
	BaseCommand_REACHED_END_OF_TOPIC           BaseCommand_Type = 35
	BaseCommand_CONSUMER_STATS                 BaseCommand_Type = 29
	BaseCommand_CONSUMER_STATS_RESPONSE        BaseCommand_Type = 30
)

func (t BaseCommand_Type) Enum() *BaseCommand_Type { return &t }
func (t BaseCommand_Type) String() string {
	switch t {
	case BaseCommand_CONNECT:
		return "CONNECT"
	case BaseCommand_CONNECTED:
		return "CONNECTED"
	case BaseCommand_SUBSCRIBE:
		return "SUBSCRIBE"
	case BaseCommand_SEND:
		return "SEND"
	case BaseCommand_SEND_RECEIPT:
		return "SEND_RECEIPT"
	case BaseCommand_SEND_ERROR:
		return "SEND_ERROR"
	case BaseCommand_MESSAGE:
		return "MESSAGE"
	case BaseCommand_ACK:
		return "ACK"
	case BaseCommand_FLOW:
		return "FLOW"
	case BaseCommand_UNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case BaseCommand_SUCCESS:
		return "SUCCESS"
	case BaseCommand_ERROR:
		return "ERROR"
	case BaseCommand_CLOSE_PRODUCER:
		return "CLOSE_PRODUCER"
	case BaseCommand_CLOSE_CONSUMER:
		return "CLOSE_CONSUMER"
	case BaseCommand_PRODUCER_SUCCESS:
		return "PRODUCER_SUCCESS"
	case BaseCommand_PING:
		return "PING"
	case BaseCommand_PONG:
		return "PONG"
	case BaseCommand_REDELIVER_UNACKNOWLEDGED_MESSAGES:
		return "REDELIVER_UNACKNOWLEDGED_MESSAGES"
	case BaseCommand_LOOKUP:
		return "LOOKUP"
	case BaseCommand_LOOKUP_RESPONSE:
		return "LOOKUP_RESPONSE"
	case BaseCommand_SEEK:
		return "SEEK"
	case BaseCommand_GET_LAST_MESSAGE_ID:
		return "GET_LAST_MESSAGE_ID"
	case BaseCommand_GET_LAST_MESSAGE_ID_RESPONSE:
		return "GET_LAST_MESSAGE_ID_RESPONSE"
	case BaseCommand_ACTIVE_CONSUMER_CHANGE:
		return "ACTIVE_CONSUMER_CHANGE"
	case BaseCommand_REACHED_END_OF_TOPIC:
		return "REACHED_END_OF_TOPIC"
	case BaseCommand_CONSUMER_STATS:
		return "CONSUMER_STATS"
	case BaseCommand_CONSUMER_STATS_RESPONSE:
		return "CONSUMER_STATS_RESPONSE"
	default:
		return fmt.Sprintf("BaseCommand_Type(%d)", int32(t))
	}
}

// CommandAck_AckType distinguishes an individual ack from a cumulative one.
type CommandAck_AckType int32

const (
	CommandAck_Individual CommandAck_AckType = 0
	CommandAck_Cumulative CommandAck_AckType = 1
)

func (t CommandAck_AckType) Enum() *CommandAck_AckType { return &t }

// CommandAck_ValidationError enumerates the local-recovery discard reasons.
type CommandAck_ValidationError int32

const (
	CommandAck_UncompressedSizeCorruption CommandAck_ValidationError = 0
	CommandAck_DecompressionError         CommandAck_ValidationError = 1
	CommandAck_ChecksumMismatch           CommandAck_ValidationError = 2
	CommandAck_BatchDeSerializeError      CommandAck_ValidationError = 3
	CommandAck_DecryptionError            CommandAck_ValidationError = 4
)

func (t CommandAck_ValidationError) Enum() *CommandAck_ValidationError { return &t }
func (t CommandAck_ValidationError) String() string {
	switch t {
	case CommandAck_UncompressedSizeCorruption:
		return "UncompressedSizeCorruption"
	case CommandAck_DecompressionError:
		return "DecompressionError"
	case CommandAck_ChecksumMismatch:
		return "ChecksumMismatch"
	case CommandAck_BatchDeSerializeError:
		return "BatchDeSerializeError"
	case CommandAck_DecryptionError:
		return "DecryptionError"
	default:
		return "Unknown"
	}
}

// CompressionType enumerates the payload compression codecs a message
// metadata block may declare. The core only consumes the decompressed
// result; the codecs themselves live behind internal/compression.Provider.
type CompressionType int32

const (
	CompressionType_NONE CompressionType = 0
	CompressionType_LZ4  CompressionType = 1
	CompressionType_ZLIB CompressionType = 2
	CompressionType_ZSTD CompressionType = 3
)

func (t CompressionType) Enum() *CompressionType { return &t }

// CommandSubscribe_SubType mirrors SubscriptionType at the wire level.
type CommandSubscribe_SubType int32

const (
	CommandSubscribe_Exclusive CommandSubscribe_SubType = 0
	CommandSubscribe_Shared    CommandSubscribe_SubType = 1
	CommandSubscribe_Failover  CommandSubscribe_SubType = 2
	CommandSubscribe_KeyShared CommandSubscribe_SubType = 3
)

func (t CommandSubscribe_SubType) Enum() *CommandSubscribe_SubType { return &t }

// CommandSubscribe_InitialPosition mirrors SubscriptionInitialPosition.
type CommandSubscribe_InitialPosition int32

const (
	CommandSubscribe_Latest   CommandSubscribe_InitialPosition = 0
	CommandSubscribe_Earliest CommandSubscribe_InitialPosition = 1
)

func (t CommandSubscribe_InitialPosition) Enum() *CommandSubscribe_InitialPosition { return &t }

// KeyValue is a single property entry carried in maps like message properties
// or subscription metadata.
type KeyValue struct {
	Key   *string `protobuf:"bytes,1,req,name=key" json:"key,omitempty"`
	Value *string `protobuf:"bytes,2,req,name=value" json:"value,omitempty"`
}

func (m *KeyValue) Reset()         { *m = KeyValue{} }
func (m *KeyValue) String() string { return fmt.Sprintf("%+v", *m) }
func (*KeyValue) ProtoMessage()    {}
func (m *KeyValue) GetKey() string {
	if m != nil && m.Key != nil {
		return *m.Key
	}
	return ""
}
func (m *KeyValue) GetValue() string {
	if m != nil && m.Value != nil {
		return *m.Value
	}
	return ""
}

// KeySharedMeta carries the key_shared subscription policy.
type KeySharedMeta struct {
	KeySharedMode        *int32  `protobuf:"varint,1,req,name=keySharedMode" json:"keySharedMode,omitempty"`
	AllowOutOfOrderDeliv *bool   `protobuf:"varint,2,opt,name=allowOutOfOrderDelivery" json:"allowOutOfOrderDelivery,omitempty"`
	HashRanges           []int32 `protobuf:"varint,3,rep,name=hashRanges" json:"hashRanges,omitempty"`
}

func (m *KeySharedMeta) Reset()         { *m = KeySharedMeta{} }
func (m *KeySharedMeta) String() string { return fmt.Sprintf("%+v", *m) }
func (*KeySharedMeta) ProtoMessage()    {}

// Schema carries schema metadata for a subscribe request.
type Schema struct {
	Name       *string     `protobuf:"bytes,1,req,name=name" json:"name,omitempty"`
	SchemaData []byte      `protobuf:"bytes,2,req,name=schemaData" json:"schemaData,omitempty"`
	Type       *int32      `protobuf:"varint,3,req,name=type" json:"type,omitempty"`
	Properties []*KeyValue `protobuf:"bytes,4,rep,name=properties" json:"properties,omitempty"`
}

func (m *Schema) Reset()         { *m = Schema{} }
func (m *Schema) String() string { return fmt.Sprintf("%+v", *m) }
func (*Schema) ProtoMessage()    {}

// MessageIdData is the wire representation of a MessageId.
type MessageIdData struct {
	LedgerId   *uint64 `protobuf:"varint,1,req,name=ledgerId" json:"ledgerId,omitempty"`
	EntryId    *uint64 `protobuf:"varint,2,req,name=entryId" json:"entryId,omitempty"`
	Partition  *int32  `protobuf:"varint,3,opt,name=partition,def=-1" json:"partition,omitempty"`
	BatchIndex *int32  `protobuf:"varint,4,opt,name=batch_index,def=-1" json:"batch_index,omitempty"`
}

func (m *MessageIdData) Reset()         { *m = MessageIdData{} }
func (m *MessageIdData) String() string { return fmt.Sprintf("%+v", *m) }
func (*MessageIdData) ProtoMessage()    {}
func (m *MessageIdData) GetLedgerId() uint64 {
	if m != nil && m.LedgerId != nil {
		return *m.LedgerId
	}
	return 0
}
func (m *MessageIdData) GetEntryId() uint64 {
	if m != nil && m.EntryId != nil {
		return *m.EntryId
	}
	return 0
}
func (m *MessageIdData) GetBatchIndex() int32 {
	if m != nil && m.BatchIndex != nil {
		return *m.BatchIndex
	}
	return -1
}

// MessageMetadata is the per-entry metadata preceding the payload.
type MessageMetadata struct {
	ProducerName       *string     `protobuf:"bytes,1,req,name=producer_name" json:"producer_name,omitempty"`
	SequenceId         *uint64     `protobuf:"varint,2,req,name=sequence_id" json:"sequence_id,omitempty"`
	PublishTime        *uint64     `protobuf:"varint,3,req,name=publish_time" json:"publish_time,omitempty"`
	Properties         []*KeyValue `protobuf:"bytes,4,rep,name=properties" json:"properties,omitempty"`
	PartitionKey       *string     `protobuf:"bytes,5,opt,name=partition_key" json:"partition_key,omitempty"`
	Compression        *CompressionType `protobuf:"varint,6,opt,name=compression,def=0" json:"compression,omitempty"`
	UncompressedSize   *uint32     `protobuf:"varint,7,opt,name=uncompressed_size,def=0" json:"uncompressed_size,omitempty"`
	NumMessagesInBatch *int32      `protobuf:"varint,8,opt,name=num_messages_in_batch,def=1" json:"num_messages_in_batch,omitempty"`
	EventTime          *uint64     `protobuf:"varint,9,opt,name=event_time,def=0" json:"event_time,omitempty"`
	SchemaVersion      []byte      `protobuf:"bytes,10,opt,name=schema_version" json:"schema_version,omitempty"`
}

func (m *MessageMetadata) Reset()         { *m = MessageMetadata{} }
func (m *MessageMetadata) String() string { return fmt.Sprintf("%+v", *m) }
func (*MessageMetadata) ProtoMessage()    {}
func (m *MessageMetadata) GetPublishTime() uint64 {
	if m != nil && m.PublishTime != nil {
		return *m.PublishTime
	}
	return 0
}
func (m *MessageMetadata) GetEventTime() uint64 {
	if m != nil && m.EventTime != nil {
		return *m.EventTime
	}
	return 0
}
func (m *MessageMetadata) GetPartitionKey() string {
	if m != nil && m.PartitionKey != nil {
		return *m.PartitionKey
	}
	return ""
}
func (m *MessageMetadata) GetProducerName() string {
	if m != nil && m.ProducerName != nil {
		return *m.ProducerName
	}
	return ""
}
func (m *MessageMetadata) GetProperties() []*KeyValue { return m.Properties }
func (m *MessageMetadata) GetNumMessagesInBatch() int32 {
	if m != nil && m.NumMessagesInBatch != nil {
		return *m.NumMessagesInBatch
	}
	return 1
}
func (m *MessageMetadata) GetCompression() CompressionType {
	if m != nil && m.Compression != nil {
		return *m.Compression
	}
	return CompressionType_NONE
}
func (m *MessageMetadata) GetUncompressedSize() uint32 {
	if m != nil && m.UncompressedSize != nil {
		return *m.UncompressedSize
	}
	return 0
}
func (m *MessageMetadata) GetSchemaVersion() []byte { return m.SchemaVersion }
func (m *MessageMetadata) GetSequenceId() uint64 {
	if m != nil && m.SequenceId != nil {
		return *m.SequenceId
	}
	return 0
}

// SingleMessageMetadata is per-sub-message metadata inside a batch entry.
type SingleMessageMetadata struct {
	Properties    []*KeyValue `protobuf:"bytes,1,rep,name=properties" json:"properties,omitempty"`
	PartitionKey  *string     `protobuf:"bytes,2,opt,name=partition_key" json:"partition_key,omitempty"`
	PayloadSize   *int32      `protobuf:"varint,3,req,name=payload_size" json:"payload_size,omitempty"`
	EventTime     *uint64     `protobuf:"varint,4,opt,name=event_time,def=0" json:"event_time,omitempty"`
}

func (m *SingleMessageMetadata) Reset()         { *m = SingleMessageMetadata{} }
func (m *SingleMessageMetadata) String() string { return fmt.Sprintf("%+v", *m) }
func (*SingleMessageMetadata) ProtoMessage()    {}
func (m *SingleMessageMetadata) GetPartitionKey() string {
	if m != nil && m.PartitionKey != nil {
		return *m.PartitionKey
	}
	return ""
}
func (m *SingleMessageMetadata) GetProperties() []*KeyValue { return m.Properties }
func (m *SingleMessageMetadata) GetEventTime() uint64 {
	if m != nil && m.EventTime != nil {
		return *m.EventTime
	}
	return 0
}

// CommandConnect / CommandConnected are exchanged once per TCP connection.
type CommandConnect struct {
	ClientVersion    *string `protobuf:"bytes,1,req,name=client_version" json:"client_version,omitempty"`
	AuthMethodName   *string `protobuf:"bytes,2,opt,name=auth_method_name" json:"auth_method_name,omitempty"`
	AuthData         []byte  `protobuf:"bytes,3,opt,name=auth_data" json:"auth_data,omitempty"`
	ProtocolVersion  *int32  `protobuf:"varint,4,opt,name=protocol_version,def=0" json:"protocol_version,omitempty"`
	ProxyToBrokerUrl *string `protobuf:"bytes,5,opt,name=proxy_to_broker_url" json:"proxy_to_broker_url,omitempty"`
}

func (m *CommandConnect) Reset()         { *m = CommandConnect{} }
func (m *CommandConnect) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandConnect) ProtoMessage()    {}

type CommandConnected struct {
	ServerVersion     *string `protobuf:"bytes,1,req,name=server_version" json:"server_version,omitempty"`
	ProtocolVersion   *int32  `protobuf:"varint,2,opt,name=protocol_version,def=0" json:"protocol_version,omitempty"`
}

func (m *CommandConnected) Reset()         { *m = CommandConnected{} }
func (m *CommandConnected) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandConnected) ProtoMessage()    {}

// CommandSubscribe opens (or reopens, on reconnect) a subscription.
type CommandSubscribe struct {
	Topic                      *string                           `protobuf:"bytes,1,req,name=topic" json:"topic,omitempty"`
	Subscription               *string                           `protobuf:"bytes,2,req,name=subscription" json:"subscription,omitempty"`
	SubType                    *CommandSubscribe_SubType         `protobuf:"varint,3,req,name=subType" json:"subType,omitempty"`
	ConsumerId                 *uint64                           `protobuf:"varint,4,req,name=consumer_id" json:"consumer_id,omitempty"`
	RequestId                  *uint64                           `protobuf:"varint,5,req,name=request_id" json:"request_id,omitempty"`
	ConsumerName               *string                           `protobuf:"bytes,6,opt,name=consumer_name" json:"consumer_name,omitempty"`
	PriorityLevel              *int32                            `protobuf:"varint,7,opt,name=priority_level" json:"priority_level,omitempty"`
	Durable                    *bool                             `protobuf:"varint,8,opt,name=durable,def=1" json:"durable,omitempty"`
	StartMessageId             *MessageIdData                    `protobuf:"bytes,9,opt,name=start_message_id" json:"start_message_id,omitempty"`
	Metadata                   []*KeyValue                       `protobuf:"bytes,10,rep,name=metadata" json:"metadata,omitempty"`
	ReadCompacted              *bool                             `protobuf:"varint,11,opt,name=read_compacted" json:"read_compacted,omitempty"`
	Schema                     *Schema                           `protobuf:"bytes,12,opt,name=schema" json:"schema,omitempty"`
	InitialPosition            *CommandSubscribe_InitialPosition `protobuf:"varint,13,opt,name=initialPosition,def=0" json:"initialPosition,omitempty"`
	ReplicateSubscriptionState *bool                             `protobuf:"varint,14,opt,name=replicate_subscription_state" json:"replicate_subscription_state,omitempty"`
	KeySharedMeta              *KeySharedMeta                    `protobuf:"bytes,15,opt,name=keySharedMeta" json:"keySharedMeta,omitempty"`
	ForceTopicCreation         *bool                             `protobuf:"varint,16,opt,name=force_topic_creation,def=1" json:"force_topic_creation,omitempty"`
	StartMessageRollbackDurationSec *uint64                      `protobuf:"varint,17,opt,name=start_message_rollback_duration_sec,def=0" json:"start_message_rollback_duration_sec,omitempty"`
}

func (m *CommandSubscribe) Reset()         { *m = CommandSubscribe{} }
func (m *CommandSubscribe) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandSubscribe) ProtoMessage()    {}

// CommandFlow grants additional message permits to the broker.
type CommandFlow struct {
	ConsumerId     *uint64 `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	MessagePermits *uint32 `protobuf:"varint,2,req,name=messagePermits" json:"messagePermits,omitempty"`
}

func (m *CommandFlow) Reset()         { *m = CommandFlow{} }
func (m *CommandFlow) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandFlow) ProtoMessage()    {}

// CommandMessage is the broker->client delivery envelope.
type CommandMessage struct {
	ConsumerId      *uint64         `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	MessageId       *MessageIdData  `protobuf:"bytes,2,req,name=message_id" json:"message_id,omitempty"`
	RedeliveryCount *uint32         `protobuf:"varint,3,opt,name=redelivery_count,def=0" json:"redelivery_count,omitempty"`
}

func (m *CommandMessage) Reset()         { *m = CommandMessage{} }
func (m *CommandMessage) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandMessage) ProtoMessage()    {}
func (m *CommandMessage) GetMessageId() *MessageIdData { return m.MessageId }
func (m *CommandMessage) GetRedeliveryCount() uint32 {
	if m != nil && m.RedeliveryCount != nil {
		return *m.RedeliveryCount
	}
	return 0
}
func (m *CommandMessage) GetConsumerId() uint64 {
	if m != nil && m.ConsumerId != nil {
		return *m.ConsumerId
	}
	return 0
}

// CommandAck acknowledges one or more message ids.
type CommandAck struct {
	ConsumerId      *uint64                     `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	AckType         *CommandAck_AckType         `protobuf:"varint,2,req,name=ack_type" json:"ack_type,omitempty"`
	MessageId       []*MessageIdData            `protobuf:"bytes,3,rep,name=message_id" json:"message_id,omitempty"`
	ValidationError *CommandAck_ValidationError `protobuf:"varint,4,opt,name=validation_error" json:"validation_error,omitempty"`
}

func (m *CommandAck) Reset()         { *m = CommandAck{} }
func (m *CommandAck) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandAck) ProtoMessage()    {}

// CommandRedeliverUnacknowledgedMessages requests redelivery, optionally
// scoped to a set of message ids (absent => all unacked messages).
type CommandRedeliverUnacknowledgedMessages struct {
	ConsumerId *uint64          `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	MessageIds []*MessageIdData `protobuf:"bytes,2,rep,name=message_ids" json:"message_ids,omitempty"`
}

func (m *CommandRedeliverUnacknowledgedMessages) Reset() {
	*m = CommandRedeliverUnacknowledgedMessages{}
}
func (m *CommandRedeliverUnacknowledgedMessages) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandRedeliverUnacknowledgedMessages) ProtoMessage()    {}

// CommandSeek resets a subscription's cursor by message id or timestamp.
type CommandSeek struct {
	ConsumerId         *uint64        `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	RequestId          *uint64        `protobuf:"varint,2,req,name=request_id" json:"request_id,omitempty"`
	MessageId          *MessageIdData `protobuf:"bytes,3,opt,name=message_id" json:"message_id,omitempty"`
	MessagePublishTime *uint64        `protobuf:"varint,4,opt,name=message_publish_time" json:"message_publish_time,omitempty"`
}

func (m *CommandSeek) Reset()         { *m = CommandSeek{} }
func (m *CommandSeek) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandSeek) ProtoMessage()    {}

// CommandGetLastMessageId / Response round-trip the broker's notion of the
// newest entry in the topic.
type CommandGetLastMessageId struct {
	ConsumerId *uint64 `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	RequestId  *uint64 `protobuf:"varint,2,req,name=request_id" json:"request_id,omitempty"`
}

func (m *CommandGetLastMessageId) Reset()         { *m = CommandGetLastMessageId{} }
func (m *CommandGetLastMessageId) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandGetLastMessageId) ProtoMessage()    {}

type CommandGetLastMessageIdResponse struct {
	LastMessageId *MessageIdData `protobuf:"bytes,1,req,name=last_message_id" json:"last_message_id,omitempty"`
	RequestId     *uint64        `protobuf:"varint,2,req,name=request_id" json:"request_id,omitempty"`
}

func (m *CommandGetLastMessageIdResponse) Reset()         { *m = CommandGetLastMessageIdResponse{} }
func (m *CommandGetLastMessageIdResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandGetLastMessageIdResponse) ProtoMessage()    {}
func (m *CommandGetLastMessageIdResponse) GetLastMessageId() *MessageIdData { return m.LastMessageId }
func (m *CommandGetLastMessageIdResponse) GetRequestId() uint64 {
	if m != nil && m.RequestId != nil {
		return *m.RequestId
	}
	return 0
}

// CommandCloseConsumer / CommandUnsubscribe tear down a subscription.
type CommandCloseConsumer struct {
	ConsumerId *uint64 `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	RequestId  *uint64 `protobuf:"varint,2,req,name=request_id" json:"request_id,omitempty"`
}

func (m *CommandCloseConsumer) Reset()         { *m = CommandCloseConsumer{} }
func (m *CommandCloseConsumer) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandCloseConsumer) ProtoMessage()    {}
func (m *CommandCloseConsumer) GetConsumerId() uint64 {
	if m != nil && m.ConsumerId != nil {
		return *m.ConsumerId
	}
	return 0
}
func (m *CommandCloseConsumer) GetRequestId() uint64 {
	if m != nil && m.RequestId != nil {
		return *m.RequestId
	}
	return 0
}

type CommandUnsubscribe struct {
	ConsumerId *uint64 `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	RequestId  *uint64 `protobuf:"varint,2,req,name=request_id" json:"request_id,omitempty"`
}

func (m *CommandUnsubscribe) Reset()         { *m = CommandUnsubscribe{} }
func (m *CommandUnsubscribe) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandUnsubscribe) ProtoMessage()    {}

// CommandActiveConsumerChange / CommandReachedEndOfTopic are unsolicited
// broker pushes.
type CommandActiveConsumerChange struct {
	ConsumerId *uint64 `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
	IsActive   *bool   `protobuf:"varint,2,opt,name=is_active,def=0" json:"is_active,omitempty"`
}

func (m *CommandActiveConsumerChange) Reset()         { *m = CommandActiveConsumerChange{} }
func (m *CommandActiveConsumerChange) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandActiveConsumerChange) ProtoMessage()    {}
func (m *CommandActiveConsumerChange) GetConsumerId() uint64 {
	if m != nil && m.ConsumerId != nil {
		return *m.ConsumerId
	}
	return 0
}
func (m *CommandActiveConsumerChange) GetIsActive() bool {
	return m != nil && m.IsActive != nil && *m.IsActive
}

type CommandReachedEndOfTopic struct {
	ConsumerId *uint64 `protobuf:"varint,1,req,name=consumer_id" json:"consumer_id,omitempty"`
}

func (m *CommandReachedEndOfTopic) Reset()         { *m = CommandReachedEndOfTopic{} }
func (m *CommandReachedEndOfTopic) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandReachedEndOfTopic) ProtoMessage()    {}
func (m *CommandReachedEndOfTopic) GetConsumerId() uint64 {
	if m != nil && m.ConsumerId != nil {
		return *m.ConsumerId
	}
	return 0
}

// CommandSend / CommandSendReceipt / CommandSendError round-trip a publish.
type CommandSend struct {
	ProducerId  *uint64 `protobuf:"varint,1,req,name=producer_id" json:"producer_id,omitempty"`
	SequenceId  *uint64 `protobuf:"varint,2,req,name=sequence_id" json:"sequence_id,omitempty"`
	NumMessages *int32  `protobuf:"varint,3,opt,name=num_messages,def=1" json:"num_messages,omitempty"`
}

func (m *CommandSend) Reset()         { *m = CommandSend{} }
func (m *CommandSend) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandSend) ProtoMessage()    {}

type CommandSendReceipt struct {
	ProducerId *uint64        `protobuf:"varint,1,req,name=producer_id" json:"producer_id,omitempty"`
	SequenceId *uint64        `protobuf:"varint,2,req,name=sequence_id" json:"sequence_id,omitempty"`
	MessageId  *MessageIdData `protobuf:"bytes,3,opt,name=message_id" json:"message_id,omitempty"`
}

func (m *CommandSendReceipt) Reset()         { *m = CommandSendReceipt{} }
func (m *CommandSendReceipt) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandSendReceipt) ProtoMessage()    {}
func (m *CommandSendReceipt) GetProducerId() uint64 {
	if m != nil && m.ProducerId != nil {
		return *m.ProducerId
	}
	return 0
}
func (m *CommandSendReceipt) GetSequenceId() uint64 {
	if m != nil && m.SequenceId != nil {
		return *m.SequenceId
	}
	return 0
}

type CommandSendError struct {
	ProducerId *uint64 `protobuf:"varint,1,req,name=producer_id" json:"producer_id,omitempty"`
	SequenceId *uint64 `protobuf:"varint,2,req,name=sequence_id" json:"sequence_id,omitempty"`
	Message    *string `protobuf:"bytes,3,req,name=message" json:"message,omitempty"`
}

func (m *CommandSendError) Reset()         { *m = CommandSendError{} }
func (m *CommandSendError) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandSendError) ProtoMessage()    {}
func (m *CommandSendError) GetMessage() string {
	if m != nil && m.Message != nil {
		return *m.Message
	}
	return ""
}
func (m *CommandSendError) GetProducerId() uint64 {
	if m != nil && m.ProducerId != nil {
		return *m.ProducerId
	}
	return 0
}
func (m *CommandSendError) GetSequenceId() uint64 {
	if m != nil && m.SequenceId != nil {
		return *m.SequenceId
	}
	return 0
}

type CommandCloseProducer struct {
	ProducerId *uint64 `protobuf:"varint,1,req,name=producer_id" json:"producer_id,omitempty"`
	RequestId  *uint64 `protobuf:"varint,2,req,name=request_id" json:"request_id,omitempty"`
}

func (m *CommandCloseProducer) Reset()         { *m = CommandCloseProducer{} }
func (m *CommandCloseProducer) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandCloseProducer) ProtoMessage()    {}

// CommandSuccess / CommandError are generic request completions correlated
// by request id.
type CommandSuccess struct {
	RequestId *uint64 `protobuf:"varint,1,req,name=request_id" json:"request_id,omitempty"`
}

func (m *CommandSuccess) Reset()         { *m = CommandSuccess{} }
func (m *CommandSuccess) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandSuccess) ProtoMessage()    {}
func (m *CommandSuccess) GetRequestId() uint64 {
	if m != nil && m.RequestId != nil {
		return *m.RequestId
	}
	return 0
}

type ServerError int32

var serverErrorNames = map[ServerError]string{
	ServerError_UnknownError:                      "UnknownError",
	ServerError_PersistenceError:                  "PersistenceError",
	ServerError_ConsumerBusy:                      "ConsumerBusy",
	ServerError_ServiceNotReady:                   "ServiceNotReady",
	ServerError_ProducerBlockedQuotaExceededError: "ProducerBlockedQuotaExceededError",
	ServerError_TopicNotFound:                     "TopicNotFound",
	ServerError_SubscriptionNotFound:               "SubscriptionNotFound",
	ServerError_ConsumerNotFound:                   "ConsumerNotFound",
	ServerError_TooManyRequests:                    "TooManyRequests",
}

func (e ServerError) String() string {
	if name, ok := serverErrorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ServerError(%d)", int32(e))
}

const (
	ServerError_UnknownError          ServerError = 0
	ServerError_PersistenceError      ServerError = 2
	ServerError_ConsumerBusy          ServerError = 7
	ServerError_ServiceNotReady       ServerError = 8
	ServerError_ProducerBlockedQuotaExceededError ServerError = 9
	ServerError_TopicNotFound         ServerError = 13
	ServerError_SubscriptionNotFound  ServerError = 14
	ServerError_ConsumerNotFound      ServerError = 15
	ServerError_TooManyRequests       ServerError = 17
)

type CommandError struct {
	RequestId *uint64      `protobuf:"varint,1,req,name=request_id" json:"request_id,omitempty"`
	Error     *ServerError `protobuf:"varint,2,req,name=error" json:"error,omitempty"`
	Message   *string      `protobuf:"bytes,3,req,name=message" json:"message,omitempty"`
}

func (m *CommandError) Reset()         { *m = CommandError{} }
func (m *CommandError) String() string { return fmt.Sprintf("%+v", *m) }
func (*CommandError) ProtoMessage()    {}
func (m *CommandError) GetError() ServerError {
	if m != nil && m.Error != nil {
		return *m.Error
	}
	return ServerError_UnknownError
}
func (m *CommandError) GetMessage() string {
	if m != nil && m.Message != nil {
		return *m.Message
	}
	return ""
}
func (m *CommandError) GetRequestId() uint64 {
	if m != nil && m.RequestId != nil {
		return *m.RequestId
	}
	return 0
}

// BaseCommand is the envelope every frame's command portion decodes into;
// exactly one of the pointer fields is populated, selected by Type.
type BaseCommand struct {
	Type BaseCommand_Type `protobuf:"varint,1,req,name=type" json:"type,omitempty"`

	Connect                *CommandConnect                         `protobuf:"bytes,2,opt,name=connect" json:"connect,omitempty"`
	Connected              *CommandConnected                       `protobuf:"bytes,3,opt,name=connected" json:"connected,omitempty"`
	Subscribe              *CommandSubscribe                       `protobuf:"bytes,4,opt,name=subscribe" json:"subscribe,omitempty"`
	Flow                   *CommandFlow                            `protobuf:"bytes,5,opt,name=flow" json:"flow,omitempty"`
	Message                *CommandMessage                         `protobuf:"bytes,6,opt,name=message" json:"message,omitempty"`
	Ack                    *CommandAck                             `protobuf:"bytes,7,opt,name=ack" json:"ack,omitempty"`
	RedeliverUnacknowledgedMessages *CommandRedeliverUnacknowledgedMessages `protobuf:"bytes,8,opt,name=redeliverUnacknowledgedMessages" json:"redeliverUnacknowledgedMessages,omitempty"`
	Seek                   *CommandSeek                            `protobuf:"bytes,9,opt,name=seek" json:"seek,omitempty"`
	GetLastMessageId       *CommandGetLastMessageId                `protobuf:"bytes,10,opt,name=getLastMessageId" json:"getLastMessageId,omitempty"`
	GetLastMessageIdResponse *CommandGetLastMessageIdResponse      `protobuf:"bytes,11,opt,name=getLastMessageIdResponse" json:"getLastMessageIdResponse,omitempty"`
	CloseConsumer          *CommandCloseConsumer                   `protobuf:"bytes,12,opt,name=close_consumer" json:"close_consumer,omitempty"`
	Unsubscribe            *CommandUnsubscribe                    `protobuf:"bytes,13,opt,name=unsubscribe" json:"unsubscribe,omitempty"`
	ActiveConsumerChange   *CommandActiveConsumerChange            `protobuf:"bytes,14,opt,name=activeConsumerChange" json:"activeConsumerChange,omitempty"`
	ReachedEndOfTopic      *CommandReachedEndOfTopic               `protobuf:"bytes,15,opt,name=reachedEndOfTopic" json:"reachedEndOfTopic,omitempty"`
	Send                   *CommandSend                            `protobuf:"bytes,16,opt,name=send" json:"send,omitempty"`
	SendReceipt            *CommandSendReceipt                     `protobuf:"bytes,17,opt,name=send_receipt" json:"send_receipt,omitempty"`
	SendError              *CommandSendError                       `protobuf:"bytes,18,opt,name=send_error" json:"send_error,omitempty"`
	CloseProducer          *CommandCloseProducer                   `protobuf:"bytes,19,opt,name=close_producer" json:"close_producer,omitempty"`
	Success                *CommandSuccess                         `protobuf:"bytes,20,opt,name=success" json:"success,omitempty"`
	Error                  *CommandError                           `protobuf:"bytes,21,opt,name=error" json:"error,omitempty"`
}

func (m *BaseCommand) Reset()         { *m = BaseCommand{} }
func (m *BaseCommand) String() string { return fmt.Sprintf("BaseCommand{%s}", m.Type) }
func (*BaseCommand) ProtoMessage()    {}
func (m *BaseCommand) GetType() BaseCommand_Type {
	if m != nil {
		return m.Type
	}
	return BaseCommand_CONNECT
}
func (m *BaseCommand) GetConnected() *CommandConnected { return m.Connected }
func (m *BaseCommand) GetError() *CommandError         { return m.Error }
func (m *BaseCommand) GetSendReceipt() *CommandSendReceipt { return m.SendReceipt }
func (m *BaseCommand) GetSendError() *CommandSendError { return m.SendError }
func (m *BaseCommand) GetSuccess() *CommandSuccess     { return m.Success }
func (m *BaseCommand) GetMessage() *CommandMessage     { return m.Message }
func (m *BaseCommand) GetActiveConsumerChange() *CommandActiveConsumerChange {
	return m.ActiveConsumerChange
}
func (m *BaseCommand) GetReachedEndOfTopic() *CommandReachedEndOfTopic { return m.ReachedEndOfTopic }
func (m *BaseCommand) GetCloseConsumer() *CommandCloseConsumer         { return m.CloseConsumer }
func (m *BaseCommand) GetSubscribe() *CommandSubscribe                 { return m.Subscribe }

var _ proto.Message = (*BaseCommand)(nil)
