// Command chat_smoke exercises a running server end to end: it creates a
// room, enters it, opens the event stream and posts one message, then waits
// for the matching chat.message frame.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func main() {
	if err := run(); err != nil {
		log.Printf("chat_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	sender := flag.String("sender", "smoke", "sender name for the test message")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar}

	var created struct {
		RoomID string `json:"roomId"`
		TTL    int64  `json:"ttl"`
	}
	if err := doJSON(ctx, client, http.MethodPost, *addr+"/api/room", nil, &created); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	fmt.Printf("Created room %s (ttl %ds)\n", created.RoomID, created.TTL)

	var entered struct {
		Outcome string `json:"outcome"`
	}
	enterURL := *addr + "/api/room/enter?roomId=" + created.RoomID
	if err := doJSON(ctx, client, http.MethodGet, enterURL, nil, &entered); err != nil {
		return fmt.Errorf("enter room: %w", err)
	}
	fmt.Printf("Entered room: outcome=%s\n", entered.Outcome)

	wsURL := "ws" + (*addr)[len("http"):] + "/ws?roomId=" + created.RoomID
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPClient: client})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	body, err := json.Marshal(map[string]string{"sender": *sender, "text": *text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	postURL := *addr + "/api/messages?roomId=" + created.RoomID
	if err := doJSON(ctx, client, http.MethodPost, postURL, body, nil); err != nil {
		return fmt.Errorf("post message: %w", err)
	}

	for {
		var frame struct {
			Event string `json:"event"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received frame: event=%s\n", frame.Event)

		if frame.Event == "chat.message" {
			return nil
		}
	}
}

func doJSON(ctx context.Context, client *http.Client, method, url string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
