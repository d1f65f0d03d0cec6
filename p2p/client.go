package p2p

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gocuria/blockchain"
)

const DefaultTimeout = 5 * time.Second

// Client performs the outbound half of the peer protocol. Every call is a
// single synchronous HTTP request with no retry.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger.With("component", "p2p"),
	}
}

// BroadcastTransaction posts tx to peer's /broadcast-transaction endpoint.
func (c *Client) BroadcastTransaction(peer string, tx blockchain.Transaction) error {
	return c.post(peer, "/broadcast-transaction", NewTransactionMessage(tx))
}

// BroadcastBlock posts b to peer's /broadcast-block endpoint.
func (c *Client) BroadcastBlock(peer string, b blockchain.Block) error {
	return c.post(peer, "/broadcast-block", NewBlockMessage(b))
}

// FetchChain downloads and decodes peer's full chain.
func (c *Client) FetchChain(peer string) ([]blockchain.Block, error) {
	resp, err := c.http.Get(peerURL(peer, "/chain"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, peer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(peer, resp.StatusCode)
	}
	chain, err := DecodeChain(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chain from %s: %w", peer, err)
	}
	return chain, nil
}

func (c *Client) post(peer, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}

	resp, err := c.http.Post(peerURL(peer, path), "application/json", bytes.NewReader(payload))
	if err != nil {
		c.logger.Debug("peer unreachable", "peer", peer, "path", path, "err", err)
		return fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, peer, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}
	return statusError(peer, resp.StatusCode)
}

func statusError(peer string, status int) error {
	var err error
	switch {
	case status == http.StatusConflict:
		err = ErrConflict
	case status == http.StatusBadRequest || status == http.StatusInternalServerError:
		err = ErrPeerRejected
	default:
		err = fmt.Errorf("unexpected status %s", http.StatusText(status))
	}
	return &StatusError{Peer: peer, Status: status, Err: err}
}

// peerURL accepts bare host:port addresses as stored in the peer set, and
// full URLs.
func peerURL(peer, path string) string {
	if strings.HasPrefix(peer, "http://") || strings.HasPrefix(peer, "https://") {
		return strings.TrimSuffix(peer, "/") + path
	}
	return "http://" + peer + path
}
