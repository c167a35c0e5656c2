// Package api is the control surface around the app runtime: inspect the
// current screen, inject user actions and deep links, and stream screen
// updates.
package api

import (
	"os"

	"visits/internal/runtime"
	"visits/internal/store"
)

type Server struct {
	Runtime *runtime.Runtime
	Store   store.Store
	Broker  EventBroker
}

// NewServer creates a Server. With REDIS_URL set the screen stream fans out
// through Redis; otherwise in memory.
func NewServer(rt *runtime.Runtime, st store.Store) *Server {
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{Runtime: rt, Store: st, Broker: broker}
}
