package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Consumer pulls bucket notifications from a JetStream stream
type Consumer struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	iter   jetstream.MessagesContext
	wg     sync.WaitGroup
}

var _ port.EventConsumer = (*Consumer)(nil)

// NewNATSConsumer connects to cfg.URL
func NewNATSConsumer(cfg config.NATSConfig, logger *slog.Logger) (*Consumer, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConsumerName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	return &Consumer{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

// Subscribe creates the durable consumer and hands every message to handler.
// Messages the handler rejects as invalid are terminated, other failures are
// redelivered up to MaxDeliver times.
func (n *Consumer) Subscribe(ctx context.Context, handler port.MessageService) error {
	maxDeliver := n.config.MaxDeliver
	if maxDeliver == 0 {
		maxDeliver = 5
	}
	ackWait := n.config.AckWait
	if ackWait == 0 {
		ackWait = 10 * time.Second
	}

	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.Subject,
		AckWait:       ackWait,
		MaxDeliver:    maxDeliver,
		BackOff:       []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", n.config.ConsumerName, err)
	}

	iter, err := cons.Messages()
	if err != nil {
		return err
	}
	n.iter = iter

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info("NATS subscription started", "stream", n.config.StreamName, "subject", n.config.Subject)
		n.consume(ctx, iter.Next, handler)
		n.logger.Info("NATS subscription stopped")
	}()

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			iter.Stop()
		}()
	}
	return nil
}

// receiveRetryDelay spaces out retries after a failed receive
const receiveRetryDelay = 500 * time.Millisecond

// consume runs until the iterator is closed or ctx is done. Other receive
// errors, such as missed heartbeats, are logged and the loop goes on.
func (n *Consumer) consume(ctx context.Context, next func() (jetstream.Msg, error), handler port.MessageService) {
	for {
		msg, err := next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
				return
			}
			n.logger.Warn("failed to receive message, retrying", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveRetryDelay):
			}
			continue
		}
		n.dispatch(ctx, handler, msg)
	}
}

func (n *Consumer) dispatch(ctx context.Context, handler port.MessageService, msg jetstream.Msg) {
	handleErr := handler.HandleMessage(ctx, msg.Data())
	switch {
	case handleErr == nil:
		if err := msg.Ack(); err != nil {
			n.logger.Error("failed to ack message", "error", err)
		}
	case isPermanent(handleErr):
		n.logger.Warn("dropping message", "subject", msg.Subject(), "error", handleErr)
		if err := msg.Term(); err != nil {
			n.logger.Error("failed to term message", "error", err)
		}
	default:
		n.logger.Warn("failed to handle message", "error", handleErr)
		if err := msg.Nak(); err != nil {
			n.logger.Error("failed to nak message", "error", err)
		}
	}
}

// isPermanent reports failures a redelivery cannot fix
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidInputData) ||
		errors.Is(err, domain.ErrContentTypeMismatch)
}

// Close stops the subscription and waits for the in-flight message
func (n *Consumer) Close() error {
	if n.iter != nil {
		n.iter.Stop()
	}

	n.wg.Wait()

	if n.conn != nil && !n.conn.IsClosed() {
		n.conn.Close()
	}
	return nil
}
