package services_test

import (
	"errors"
	"strings"
	"testing"

	"sptnr/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUpstream, "subsonic", "getAlbum", "bad envelope", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"subsonic", "getAlbum", "bad envelope"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	cases := map[string]error{
		"configuration":  services.Wrap(services.ErrConfiguration, "config", "", "bad url", nil),
		"authentication": services.Wrap(services.ErrAuthentication, "spotify", "token", "", nil),
		"connectivity":   services.Wrap(services.ErrConnectivity, "subsonic", "ping", "", errors.New("refused")),
		"upstream":       services.Wrap(services.ErrUpstream, "spotify", "search", "429", nil),
		"not_found":      services.Wrap(services.ErrNotFound, "runlogs", "open", "", nil),
		"internal":       errors.New("plain"),
		"":               nil,
	}
	for want, err := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
