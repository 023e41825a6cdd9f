package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribeEchoServer confirms every logsSubscribe request and then invokes
// afterSubscribe with the server connection and the granted subscription ID.
func subscribeEchoServer(t *testing.T, afterSubscribe func(*websocket.Conn, int64)) *httptest.Server {
	t.Helper()

	var nextSubID int64 = 7000
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			if req.Method != "logsSubscribe" {
				continue
			}

			nextSubID++
			resp := wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: nextSubID}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
			if afterSubscribe != nil {
				afterSubscribe(conn, nextSubID)
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSClientSubscribeReceivesNotifications(t *testing.T) {
	server := subscribeEchoServer(t, func(conn *websocket.Conn, subID int64) {
		notif := wsNotification{
			JSONRPC: "2.0",
			Method:  "logsNotification",
			Params: &wsNotificationParams{
				Subscription: subID,
				Result: wsNotificationResult{
					Context: &wsContext{Slot: 4242},
					Value: wsLogsValue{
						Signature: "launchsig",
						Logs:      []string{"Program log: Instruction: Initialize2"},
					},
				},
			},
		}
		_ = conn.WriteJSON(notif)
	})
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"someprogram"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	select {
	case notif := <-ch:
		if notif.Signature != "launchsig" {
			t.Errorf("signature = %s, want launchsig", notif.Signature)
		}
		if notif.Slot != 4242 {
			t.Errorf("slot = %d, want 4242", notif.Slot)
		}
		if notif.Err != nil {
			t.Errorf("err should be nil, got %v", notif.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWSClientSubscribeSendsCommitment(t *testing.T) {
	gotParams := make(chan []interface{}, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req struct {
			ID     uint64        `json:"id"`
			Params []interface{} `json:"params"`
		}
		if err := json.Unmarshal(msg, &req); err != nil {
			return
		}
		gotParams <- req.Params

		resp := wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: 1}
		_ = conn.WriteJSON(resp)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	config := DefaultWSConfig()
	config.Commitment = "processed"

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL(server), &config)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if _, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}}); err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	select {
	case params := <-gotParams:
		if len(params) != 2 {
			t.Fatalf("params length = %d, want 2", len(params))
		}
		mentions, ok := params[0].(map[string]interface{})
		if !ok || mentions["mentions"] == nil {
			t.Errorf("first param should carry mentions filter: %v", params[0])
		}
		opts, ok := params[1].(map[string]interface{})
		if !ok || opts["commitment"] != "processed" {
			t.Errorf("second param should carry commitment: %v", params[1])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for subscribe request")
	}
}

func TestWSClientFailedTransactionErrPassthrough(t *testing.T) {
	server := subscribeEchoServer(t, func(conn *websocket.Conn, subID int64) {
		notif := wsNotification{
			JSONRPC: "2.0",
			Method:  "logsNotification",
			Params: &wsNotificationParams{
				Subscription: subID,
				Result: wsNotificationResult{
					Value: wsLogsValue{
						Signature: "failedsig",
						Logs:      []string{"Program log: Instruction: Initialize2"},
						Err:       map[string]interface{}{"InstructionError": []interface{}{0.0, "Custom"}},
					},
				},
			},
		}
		_ = conn.WriteJSON(notif)
	})
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	select {
	case notif := <-ch:
		if notif.Err == nil {
			t.Error("transaction error should be passed through")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWSClientClose(t *testing.T) {
	server := subscribeEchoServer(t, nil)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	ch, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	// Subscription channel is closed on shutdown.
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel, got a notification")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	// Double close should be safe.
	if err := client.Close(); err != nil {
		t.Errorf("double Close: %v", err)
	}

	if _, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}}); err == nil {
		t.Error("expected error subscribing after close")
	}
}

func TestWSClientDefaultsFillIn(t *testing.T) {
	server := subscribeEchoServer(t, nil)
	defer server.Close()

	config := &WSClientConfig{
		ReconnectDelay:    100 * time.Millisecond,
		MaxReconnectDelay: 1 * time.Second,
		PingInterval:      5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Second,
		SubscribeTimeout:  5 * time.Second,
	}

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL(server), config)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.config.Commitment != DefaultCommitment {
		t.Errorf("empty commitment should default to %q, got %q", DefaultCommitment, client.config.Commitment)
	}
	if client.config.PingInterval != 5*time.Second {
		t.Errorf("PingInterval = %v, want 5s", client.config.PingInterval)
	}
}
