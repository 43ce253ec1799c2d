package bus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectDataSourceCreated = "datasource.created"
	SubjectDataSourceUpdated = "datasource.updated"
	SubjectDataSourceDeleted = "datasource.deleted"
	SubjectSampleCreated     = "sample.created"
	SubjectSampleUpdated     = "sample.updated"
	SubjectSampleDeleted     = "sample.deleted"
)

// Event is the payload of every change notification.
type Event struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

func NewEvent(id string) Event {
	return Event{ID: id, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(subject string, payload any) error
	Close()
}

// Connect returns a NATS publisher, or a no-op publisher when url is empty.
func Connect(url string, logger *zap.Logger) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	conn, err := nats.Connect(url,
		nats.Name("resource2code"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{Conn: conn}, nil
}

type NATSPublisher struct {
	Conn *nats.Conn
}

func (p *NATSPublisher) Close() {
	if p.Conn != nil {
		_ = p.Conn.Drain()
		p.Conn.Close()
	}
}

func (p *NATSPublisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Conn.Publish(subject, data)
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, any) error { return nil }

func (NopPublisher) Close() {}
