package domain

import (
	"testing"
	"time"
)

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{"nil", nil, true},
		{"no expiry", &Session{}, false},
		{"future", &Session{ExpiresAt: now.Add(time.Minute)}, false},
		{"exact", &Session{ExpiresAt: now}, true},
		{"past", &Session{ExpiresAt: now.Add(-time.Second)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
