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

package manage

import (
	"context"
	"crypto/tls"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/relaybroker/broker-client-go/core/conn"
	"github.com/relaybroker/broker-client-go/core/frame"
	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/core/pub"
	"github.com/relaybroker/broker-client-go/core/sub"
	"github.com/relaybroker/broker-client-go/internal/compression"
	"github.com/relaybroker/broker-client-go/pkg/log"
	"github.com/relaybroker/broker-client-go/utils"
)

// ClientConfig configures how a Client dials and authenticates against
// a single broker. This client doesn't perform topic lookup/service
// discovery -- Addr names the broker directly.
type ClientConfig struct {
	Addr        string // "pulsar://host:port"
	DialTimeout time.Duration
	TLSConfig   *tls.Config // non-nil enables TLS

	AuthMethod     string
	AuthData       []byte
	ProxyBrokerURL string

	// Errs receives asynchronous errors from the connection's read loop
	// and from consumers/producers built on it. May be nil.
	Errs chan error
}

// SetDefaults returns a copy of cfg with zero-valued fields replaced by
// sane defaults.
func (c ClientConfig) SetDefaults() ClientConfig {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	return c
}

// Client wraps one physical broker connection. Producers minted from it
// (NewProducer, and the DLQ producer newConsumer builds) share its
// connection and request id sequence -- safe, since every caller pulls
// ids from the same *msg.MonotonicID. Consumers do not: each gets its
// own dedicated connection (see dialer), because core/sub.Consumer
// numbers its own requests starting from zero and two consumers
// correlating requests against the same frame.Dispatcher would collide.
type Client struct {
	cfg ClientConfig
	cnx *conn.Conn

	dispatcher *frame.Dispatcher
	registry   *conn.ConsumerRegistry
	reqID      *msg.MonotonicID

	consumerSeq uint64 // atomic
	producerSeq uint64 // atomic

	asyncErrs utils.AsyncErrors
}

// NewClient dials cfg.Addr, completes the CONNECT/CONNECTED handshake,
// and starts the connection's read loop. The returned Client is ready
// to mint consumers and producers.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	cfg = cfg.SetDefaults()

	var cnx *conn.Conn
	var err error
	if cfg.TLSConfig != nil {
		cnx, err = conn.NewTLSConn(cfg.Addr, cfg.TLSConfig, cfg.DialTimeout)
	} else {
		cnx, err = conn.NewTCPConn(cfg.Addr, cfg.DialTimeout)
	}
	if err != nil {
		return nil, err
	}

	dispatcher := frame.NewFrameDispatcher()
	registry := conn.NewConsumerRegistry()
	asyncErrs := utils.AsyncErrors(cfg.Errs)

	go func() {
		err := cnx.Read(func(f frame.Frame) {
			// Unsolicited pushes addressed to a known consumer go
			// through the registry; everything else (CONNECTED,
			// SUCCESS, ERROR, SEND_RECEIPT/ERROR, GET_LAST_MESSAGE_ID
			// responses) is request/response traffic for Dispatcher.
			if registry.Route(f) {
				return
			}
			dispatcher.Dispatch(f)
		})
		if err != nil {
			log.Debugf("client: read loop for %s exited: %v", cfg.Addr, err)
		}
		asyncErrs.Send(err)
	}()

	connector := conn.NewConnector(cnx, dispatcher, conn.AuthConfig{
		AuthMethod: cfg.AuthMethod,
		AuthData:   cfg.AuthData,
	})

	connectCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	if _, err := connector.Connect(connectCtx, cfg.AuthMethod, cfg.ProxyBrokerURL); err != nil {
		_ = cnx.Close()
		return nil, err
	}

	return &Client{
		cfg:        cfg,
		cnx:        cnx,
		dispatcher: dispatcher,
		registry:   registry,
		reqID:      &msg.MonotonicID{},
		asyncErrs:  asyncErrs,
	}, nil
}

// Closed unblocks once the underlying connection has gone away.
func (c *Client) Closed() <-chan struct{} {
	return c.cnx.Closed()
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.cnx.Close()
}

func (c *Client) connHandle() sub.ConnHandle {
	return sub.ConnHandle{Cnx: c.cnx, Dispatcher: c.dispatcher, Registry: c.registry}
}

// dialer returns a sub.Dialer that dials a fresh, dedicated connection
// on every call -- both the session's first connect and every
// subsequent internal reconnect -- rather than reusing c's own
// connection, so this consumer's request ids never correlate against
// a frame.Dispatcher any other consumer is also numbering requests on.
func (c *Client) dialer() sub.Dialer {
	cfg := c.cfg
	return func(ctx context.Context) (sub.ConnHandle, error) {
		cl, err := NewClient(ctx, cfg)
		if err != nil {
			return sub.ConnHandle{}, err
		}
		return cl.connHandle(), nil
	}
}

// newConsumer builds the sub.Config common to all three subscription
// modes and constructs the session actor. Partition is always 0 --
// routing across partitions is a façade-level concern this client
// doesn't implement (topic lookup/partition discovery is out of scope).
func (c *Client) newConsumer(subType sub.SubType, topic, subscription string, earliest bool, queue chan msg.Message) (*sub.Consumer, error) {
	pos := sub.Latest
	if earliest {
		pos = sub.Earliest
	}

	cfg := sub.Config{
		Topic:           topic,
		Subscription:    subscription,
		ConsumerName:    uuid.New().String(),
		SubType:         subType,
		InitialPosition: pos,
		Durable:         true,
	}.SetDefaults()

	consumerID := atomic.AddUint64(&c.consumerSeq, 1)

	// A nil *pub.Producer boxed into the dlqProd interface parameter
	// would be a non-nil interface holding a nil pointer, which the
	// dead letter processor's "producer != nil" check can't see
	// through -- so the no-DLQ case passes the literal nil, not a
	// typed-nil variable, to keep the interface itself nil.
	if cfg.DeadLetter.DeadLetterTopic == "" {
		return sub.NewConsumer(consumerID, cfg, 0, queue, c.dialer(), nil, nil, compression.NoopProvider{}, c.asyncErrs)
	}

	producerID := atomic.AddUint64(&c.producerSeq, 1)
	p := pub.NewProducer(c.cnx, c.dispatcher, c.reqID, producerID)
	p.ProducerName = cfg.DeadLetter.DeadLetterTopic + "-dlq-" + uuid.New().String()

	return sub.NewConsumer(consumerID, cfg, 0, queue, c.dialer(), nil, p, compression.NoopProvider{}, c.asyncErrs)
}

// NewProducer returns a producer bound to this Client's connection,
// naming itself name (or a generated one, if blank).
func (c *Client) NewProducer(name string) *pub.Producer {
	if name == "" {
		name = uuid.New().String()
	}
	producerID := atomic.AddUint64(&c.producerSeq, 1)
	p := pub.NewProducer(c.cnx, c.dispatcher, c.reqID, producerID)
	p.ProducerName = name
	return p
}

// NewExclusiveConsumer subscribes with Exclusive semantics: only one
// consumer may be bound to the subscription at a time.
func (c *Client) NewExclusiveConsumer(ctx context.Context, topic, name string, earliest bool, queue chan msg.Message) (*sub.Consumer, error) {
	return c.newConsumer(sub.Exclusive, topic, name, earliest, queue)
}

// NewFailoverConsumer subscribes with Failover semantics: many
// consumers may bind, but only the first in lexicographic order
// receives messages until it disconnects.
func (c *Client) NewFailoverConsumer(ctx context.Context, topic, name string, earliest bool, queue chan msg.Message) (*sub.Consumer, error) {
	return c.newConsumer(sub.Failover, topic, name, earliest, queue)
}

// NewSharedConsumer subscribes with Shared semantics: many consumers
// may bind and the broker round-robins deliveries between them.
func (c *Client) NewSharedConsumer(ctx context.Context, topic, name string, earliest bool, queue chan msg.Message) (*sub.Consumer, error) {
	return c.newConsumer(sub.Shared, topic, name, earliest, queue)
}

// ClientPool hands out one shared Client per broker address. That
// shared Client is the acquisition point ManagedConsumer and producers
// go through, and producers minted from it do ride its one connection
// -- but each sub.Consumer it builds dials its own dedicated connection
// (see Client.dialer) rather than reusing the pool's, so consumer
// sessions never end up correlating requests against a
// frame.Dispatcher some other consumer is also numbering requests on.
// The pool does not perform topic lookup/service discovery -- cfg.Addr
// is dialed as-is.
type ClientPool struct {
	mu      sync.Mutex
	clients map[string]*Client
}

// NewClientPool returns an empty pool.
func NewClientPool() *ClientPool {
	return &ClientPool{clients: make(map[string]*Client)}
}

// Handle is returned by ForTopic; Get resolves it to a live Client,
// dialing (or redialing, if the pooled connection has since died) as
// needed.
type Handle struct {
	pool *ClientPool
	cfg  ClientConfig
}

// Get returns the pool's Client for h's broker address, dialing one if
// none exists yet or the existing one has been closed.
func (h *Handle) Get(ctx context.Context) (*Client, error) {
	return h.pool.get(ctx, h.cfg)
}

// ForTopic returns a Handle for the broker that owns topic. Since this
// client performs no lookup, that's simply cfg.Addr; topic is accepted
// only to match the façade's per-topic acquisition pattern.
func (p *ClientPool) ForTopic(ctx context.Context, cfg ClientConfig, topic string) (*Handle, error) {
	return &Handle{pool: p, cfg: cfg.SetDefaults()}, nil
}

// get returns the pooled Client for cfg.Addr, dialing a replacement if
// there isn't one yet or the one on file has gone away. Holding the
// pool lock across the dial serializes concurrent first-connects to
// the same address rather than racing two TCP connections into
// existence; connection pooling isn't this client's performance-
// critical path.
func (p *ClientPool) get(ctx context.Context, cfg ClientConfig) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[cfg.Addr]; ok {
		select {
		case <-c.Closed():
			// stale, fall through and redial
		default:
			return c, nil
		}
	}

	c, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.clients[cfg.Addr] = c
	return c, nil
}

// Close tears down every pooled connection.
func (p *ClientPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for addr, c := range p.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.clients, addr)
	}
	return firstErr
}
