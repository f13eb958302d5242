package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSConsumer handles NATS JetStream consumption of extraction results
type NATSConsumer struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	sub       *nats.Subscription
	config    *config.NATSConfig
	logger    *logger.Logger
	msgChan   chan *entity.ExtractionResult
	running   atomic.Bool
	fetchDone chan struct{}

	// mu guards closed and every send on msgChan; subscription callbacks may
	// still be in flight when Disconnect closes the channel
	mu     sync.Mutex
	closed bool
}

// NewNATSConsumer creates a new NATS consumer
func NewNATSConsumer(cfg *config.NATSConfig, logger *logger.Logger) *NATSConsumer {
	return &NATSConsumer{
		config:  cfg,
		logger:  logger.WithComponent("nats-consumer"),
		msgChan: make(chan *entity.ExtractionResult, cfg.MaxPendingMessages),
	}
}

// Connect connects to NATS server and sets up consumer
func (n *NATSConsumer) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("account-graph"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n.conn = conn

	// Try JetStream first, if not available fall back to core NATS
	js, err := conn.JetStream()
	if err != nil {
		n.logger.Warn("JetStream not available, using core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.js = js
	return n.setupJetStreamSubscription()
}

// setupJetStreamSubscription sets up JetStream subscription
func (n *NATSConsumer) setupJetStreamSubscription() error {
	subject := fmt.Sprintf("%s.events", n.config.SubjectPrefix)

	n.logger.Info("Setting up JetStream subscription",
		zap.String("subject", subject),
		zap.String("stream", n.config.StreamName))

	sub, err := n.js.PullSubscribe(subject, n.config.ConsumerGroup,
		nats.BindStream(n.config.StreamName))
	if err != nil {
		n.logger.Warn("Failed to create JetStream subscription, falling back to core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.sub = sub
	n.running.Store(true)
	n.fetchDone = make(chan struct{})

	// Start message processing
	go n.processJetStreamMessages()

	n.logger.Info("Successfully connected to NATS JetStream",
		zap.String("subject", subject),
		zap.String("consumer", n.config.ConsumerGroup))

	return nil
}

// processJetStreamMessages processes messages from JetStream pull subscription
func (n *NATSConsumer) processJetStreamMessages() {
	defer close(n.fetchDone)

	n.logger.Info("Starting JetStream message processing")

	for n.running.Load() {
		msgs, err := n.sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			if !n.running.Load() {
				break
			}
			n.logger.Error("Failed to fetch messages", zap.Error(err))
			continue
		}

		n.logger.Debug("Fetched messages from JetStream", zap.Int("count", len(msgs)))

		for _, msg := range msgs {
			n.handleMessage(msg)
		}
	}

	n.logger.Info("Stopped JetStream message processing")
}

// setupCoreNATSSubscription sets up core NATS subscription
func (n *NATSConsumer) setupCoreNATSSubscription() error {
	subject := fmt.Sprintf("%s.events", n.config.SubjectPrefix)
	queueGroup := n.config.ConsumerGroup

	n.logger.Info("Setting up core NATS subscription",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	sub, err := n.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		n.handleMessage(msg)
	})

	if err != nil {
		n.logger.Error("Failed to subscribe to subject", zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	n.sub = sub
	n.running.Store(true)

	n.logger.Info("Successfully connected to core NATS",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	return nil
}

// handleMessage handles incoming NATS messages
func (n *NATSConsumer) handleMessage(msg *nats.Msg) {
	var result entity.ExtractionResult
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		n.logger.Error("Failed to unmarshal extraction result", zap.Error(err))
		if msg.Reply != "" {
			msg.Respond([]byte("ERROR: Failed to unmarshal"))
		}
		return
	}

	n.logger.Debug("Processing extraction result",
		zap.String("site_url", result.SiteURL),
		zap.Int("candidates", len(result.Accounts())))

	if !n.deliver(&result) {
		n.logger.Warn("Message channel is full, dropping message", zap.String("site_url", result.SiteURL))
		if msg.Reply != "" {
			msg.Nak()
		}
		return
	}

	// Acknowledge if it's a JetStream message
	if msg.Reply != "" {
		msg.Ack()
	}
}

// deliver hands a decoded result to the message channel without blocking.
// Returns false when the channel is full or already closed.
func (n *NATSConsumer) deliver(result *entity.ExtractionResult) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	select {
	case n.msgChan <- result:
		return true
	default:
		return false
	}
}

// Disconnect disconnects from NATS server
func (n *NATSConsumer) Disconnect() error {
	n.running.Store(false)

	if n.sub != nil {
		n.sub.Unsubscribe()
	}
	// The fetch loop still holds n.sub until it exits
	if n.fetchDone != nil {
		<-n.fetchDone
		n.fetchDone = nil
	}
	n.sub = nil
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}

	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.msgChan)
	}
	n.mu.Unlock()

	n.logger.Info("Disconnected from NATS")
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSConsumer) IsConnected() bool {
	return n.running.Load() && n.conn != nil && n.conn.IsConnected()
}

// GetMessageChannel returns the message channel
func (n *NATSConsumer) GetMessageChannel() <-chan *entity.ExtractionResult {
	return n.msgChan
}
