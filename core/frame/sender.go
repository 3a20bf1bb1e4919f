package frame

import "github.com/relaybroker/broker-client-go/pkg/api"

// CmdSender is the narrow interface the session actor and producer need
// from a connection: enough to push a frame onto the wire and learn when
// the underlying transport has gone away. core/conn.Conn implements it.
type CmdSender interface {
	SendSimpleCmd(cmd api.BaseCommand) error
	SendPayloadCmd(cmd api.BaseCommand, metadata api.MessageMetadata, payload []byte) error
	Closed() <-chan struct{}
}
