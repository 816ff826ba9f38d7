package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher publishes each event on subject.<city id>.
type NATSPublisher struct {
	conn    msgPublisher
	closer  func()
	subject string
	logger  *slog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

// ConnectNATS dials url and returns a publisher that owns the connection.
func ConnectNATS(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("loci-locality"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	p := NewNATSPublisher(nc, subject, logger)
	p.closer = nc.Close
	return p, nil
}

func NewNATSPublisher(conn msgPublisher, subject string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

func (p *NATSPublisher) Publish(_ context.Context, ev types.LocationChangedEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(p.subject + "." + ev.City.ID)
	msg.Data = data
	for k, v := range eventHeaders(ev) {
		msg.Header.Set(k, v)
	}
	msg.Header.Set("session_id", ev.SessionID)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.closer != nil {
		p.closer()
	}
	return nil
}
