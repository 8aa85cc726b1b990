package events

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/nisdos/shellsig/internal/model"
)

// Publisher sends command results to a collector socket. Publishing is
// best-effort: a session must keep running even when nobody is watching,
// so the caller is expected to tolerate (or just log) errors.
type Publisher struct {
	conn *net.UnixConn
}

// Dial connects to the collector socket at path.
func Dial(path string) (*Publisher, error) {
	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, fmt.Errorf("resolve unix addr: %w", err)
	}
	conn, err := net.DialUnix("unixgram", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial collector socket: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// Publish sends one result as a JSON datagram.
func (p *Publisher) Publish(r model.CommandResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := p.conn.Write(payload); err != nil {
		return fmt.Errorf("send result: %w", err)
	}
	return nil
}

// Close releases the socket.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
