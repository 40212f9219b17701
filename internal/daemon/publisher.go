package daemon

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/cratecheck/internal/history"
)

// RunsSubject carries one JSON-encoded run summary per completed
// verification run.
const RunsSubject = "cratecheck.runs"

// Publisher emits run summaries to NATS so CI dashboards can subscribe to
// verification outcomes.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to the NATS server at url.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("cratecheck"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	slog.Info("Publishing run summaries", "url", url, "subject", RunsSubject)
	return &Publisher{conn: conn}, nil
}

// PublishRun publishes one run record. Failures are logged, not fatal:
// event delivery never gates verification.
func (p *Publisher) PublishRun(rec *history.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		slog.Error("Could not encode run summary", "error", err)
		return
	}
	if err := p.conn.Publish(RunsSubject, data); err != nil {
		slog.Error("Could not publish run summary", "error", err)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
