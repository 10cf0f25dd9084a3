// internal/broadcast/client.go
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Scan is the datagram body. One scan = one datagram.
type Scan struct {
	NodeUUID   string `json:"nodeUUID"`
	ReaderUUID string `json:"qrReaderUUID"`
	Data       string `json:"data"`
	Timestamp  string `json:"timestamp"` // RFC3339, UTC
}

// Client announces decoded scans on the local segment over UDP.
// Stateless: 1 datagram = 1 short-lived socket. No acks, no retries.
type Client struct {
	addr       *net.UDPAddr
	nodeUUID   string
	readerUUID string
	timeout    time.Duration
}

type Config struct {
	Address    string
	Port       int
	NodeUUID   string
	ReaderUUID string
	Timeout    time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.Address == "" || cfg.Port <= 0 {
		return nil, errors.New("broadcast: address and port required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("broadcast: resolve: %w", err)
	}

	return &Client{
		addr:       addr,
		nodeUUID:   cfg.NodeUUID,
		readerUUID: cfg.ReaderUUID,
		timeout:    cfg.Timeout,
	}, nil
}

// Announce sends one scan datagram.
func (c *Client) Announce(data string, at time.Time) error {
	pkt, err := json.Marshal(Scan{
		NodeUUID:   c.nodeUUID,
		ReaderUUID: c.readerUUID,
		Data:       data,
		Timestamp:  at.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("broadcast: encode: %w", err)
	}

	conn, err := net.DialUDP("udp4", nil, c.addr)
	if err != nil {
		return fmt.Errorf("broadcast: dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	// Go UDP sockets carry SO_BROADCAST already.
	_ = conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("broadcast: write: %w", err)
	}
	return nil
}
