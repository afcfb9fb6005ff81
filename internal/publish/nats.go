package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"pairpulse/internal/model"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultSubjectPrefix = "pairs.stats"

// NATSPublisher pushes updated pair statistics onto a NATS subject per pair.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

func NewNATSPublisher(url, subjectPrefix string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if subjectPrefix == "" {
		subjectPrefix = defaultSubjectPrefix
	}

	conn, err := nats.Connect(url,
		nats.Name("pairpulse-aggregator"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.PingInterval(20*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return &NATSPublisher{
		conn:   conn,
		prefix: subjectPrefix,
		logger: logger,
	}, nil
}

// PublishPairStats publishes the full record for a pair to its subject.
func (p *NATSPublisher) PublishPairStats(_ context.Context, stats model.PairStats) error {
	payload, err := jsonCodec.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal pair stats: %w", err)
	}

	subject := p.subject(stats.PairID)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("pair stats published", zap.String("subject", subject))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("drain nats connection", zap.Error(err))
	}
	p.conn.Close()
}

// subject maps a pair id to a NATS subject token. Dots and spaces would
// change subject semantics, so they are replaced.
func (p *NATSPublisher) subject(pairID string) string {
	token := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(pairID)
	return p.prefix + "." + token
}
