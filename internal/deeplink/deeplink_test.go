package deeplink

import (
	"testing"

	"visits/internal/model"
)

func TestParseFullPayload(t *testing.T) {
	p, err := Parse("https://visits.example.com/signin/pk_live_abc?driver_id=driver-7&manual_visits=show")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.PublishableKey != "pk_live_abc" {
		t.Fatalf("pk: %q", p.PublishableKey)
	}
	if p.DriverID != "driver-7" {
		t.Fatalf("driver id: %q", p.DriverID)
	}
	if p.ManualVisits != model.ManualVisitsShow {
		t.Fatalf("manual visits: %v", p.ManualVisits)
	}
}

func TestParseKeyOnly(t *testing.T) {
	p, err := Parse("https://visits.example.com/signin/pk_live_abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.HasDriverID() {
		t.Fatalf("unexpected driver id %q", p.DriverID)
	}
	if p.ManualVisits != model.ManualVisitsUnknown {
		t.Fatalf("manual visits should stay unknown, got %v", p.ManualVisits)
	}
}

func TestParseRejectsKeylessURL(t *testing.T) {
	if _, err := Parse("https://visits.example.com/signin/"); err == nil {
		t.Fatal("expected error for URL with no key")
	}
}
