// Package handshake asks the telemetry backend for the last packet id it
// stored so a restarted collector continues the sequence.
package handshake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type response struct {
	LastPacket *uint64 `json:"last_packet"`
}

type Client struct {
	url    string
	http   *http.Client
	logger *log.Logger
}

func New(url string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}, logger: logger}
}

// LastPacket returns the last id the backend acknowledged.
func (c *Client) LastPacket(ctx context.Context) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("handshake: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("handshake: status %s", res.Status)
	}
	var body response
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&body); err != nil {
		return 0, fmt.Errorf("handshake: decode: %w", err)
	}
	if body.LastPacket == nil {
		return 0, fmt.Errorf("handshake: response has no last_packet")
	}
	return *body.LastPacket, nil
}

// NextPacketID is the id to seed the publisher with: one past the last
// stored packet, or 0 when the backend cannot be reached.
func (c *Client) NextPacketID(ctx context.Context) uint64 {
	last, err := c.LastPacket(ctx)
	if err != nil {
		c.logger.Printf("[boot] could not get handshake data, starting at packet 0: %v", err)
		return 0
	}
	c.logger.Printf("[boot] handshake: backend last packet %d", last)
	return last + 1
}
