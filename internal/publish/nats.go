// Package publish fans decoded downlinks out to a NATS server.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"go978/internal/storage"
)

// DefaultSubject is the subject prefix used when none is configured.
const DefaultSubject = "uat.downlink"

const (
	flushTimeout = 5 * time.Second
	drainTimeout = 10 * time.Second
)

// NATSPublisher publishes records as JSON on <prefix>.<ADDRESS>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *logrus.Logger
	closed chan struct{}
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, prefix string, logger *logrus.Logger) (*NATSPublisher, error) {
	if prefix == "" {
		prefix = DefaultSubject
	}

	closed := make(chan struct{})
	conn, err := nats.Connect(url,
		nats.Name("go978"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DrainTimeout(drainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.WithField("url", c.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			close(closed)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	logger.WithFields(logrus.Fields{
		"url":     conn.ConnectedUrl(),
		"subject": prefix + ".*",
	}).Info("Connected to NATS")

	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger, closed: closed}, nil
}

// Subject returns the subject a record for address is published on.
func Subject(prefix, address string) string {
	return strings.TrimSuffix(prefix, ".") + "." + strings.ToUpper(address)
}

// Publish sends one record.
func (p *NATSPublisher) Publish(rec *storage.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := p.conn.Publish(Subject(p.prefix, rec.Address), data); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

// Close flushes pending messages, drains the connection and returns once
// it is closed.
func (p *NATSPublisher) Close() error {
	if err := p.conn.FlushTimeout(flushTimeout); err != nil {
		p.logger.WithError(err).Warn("Failed to flush NATS connection")
	}

	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}

	select {
	case <-p.closed:
		return nil
	case <-time.After(drainTimeout + time.Second):
		p.conn.Close()
		return fmt.Errorf("drain NATS connection: timed out after %s", drainTimeout)
	}
}
