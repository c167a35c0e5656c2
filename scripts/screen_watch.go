// Package main runs a demo WebSocket client that follows the screen stream
// and drives one deep link through the app.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type screenEvent struct {
	Type   string `json:"type"`
	Screen struct {
		Kind string `json:"kind"`
	} `json:"screen"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect WS first so no transition is missed
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/screen/stream"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt screenEvent
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("screen -> %s", evt.Screen.Kind)
		}
	}()

	// Hand the app a deep link, as a sign-in email link would
	link := os.Getenv("DEEP_LINK_URL")
	if link == "" {
		link = "https://visits.example.com/signin/pk_demo?driver_id=driver_demo"
	}
	body, _ := json.Marshal(map[string]string{"url": link})
	resp, err := http.Post(base+"/v1/deeplink", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	_ = resp.Body.Close()
	log.Printf("deep link accepted: %d", resp.StatusCode)

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Printf("done watching")
	}
}
