// Package deeplink parses the external URLs that carry publishable-key and
// driver-id hints into the app.
package deeplink

import (
	"fmt"
	"net/url"

	"visits/internal/model"
)

// Payload is what a deep link can carry. Every field is optional; the
// reconciliation reducer decides what an incomplete payload means.
type Payload struct {
	PublishableKey model.PublishableKey `json:"publishableKey,omitempty"`
	DriverID       model.DriverID       `json:"driverId,omitempty"`
	ManualVisits   model.ManualVisitsMode `json:"manualVisits,omitempty"`
}

// HasDriverID reports whether the payload names a driver.
func (p Payload) HasDriverID() bool { return p.DriverID != "" }

// Parse extracts a payload from a deep-link URL of the form
// https://host/signin/<publishable_key>?driver_id=...&manual_visits=show|hide.
// A URL with no recognizable publishable key is not a deep link.
func Parse(raw string) (Payload, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Payload{}, fmt.Errorf("deep link: %w", err)
	}
	var p Payload
	if pk := lastSegment(u.Path); pk != "" && pk != "signin" {
		key, err := model.NewPublishableKey(pk)
		if err == nil {
			p.PublishableKey = key
		}
	}
	if p.PublishableKey == "" {
		return Payload{}, fmt.Errorf("deep link %q carries no publishable key", raw)
	}
	q := u.Query()
	if v := q.Get("driver_id"); v != "" {
		if id, err := model.NewDriverID(v); err == nil {
			p.DriverID = id
		}
	}
	p.ManualVisits = model.ParseManualVisitsMode(q.Get("manual_visits"))
	return p, nil
}

func lastSegment(path string) string {
	out := ""
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if seg := path[start:i]; seg != "" {
				out = seg
			}
			start = i + 1
		}
	}
	return out
}
