package main

import (
	"testing"
)

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "weekday evenings", spec: "0 0 18 * * 1-5"},
		{name: "descriptor", spec: "@daily"},
		{name: "five fields", spec: "0 18 * * 1-5", wantErr: true},
		{name: "garbage", spec: "whenever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newScheduler(tt.spec, func() {})
			if (err != nil) != tt.wantErr {
				t.Fatalf("newScheduler(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err == nil && len(c.Entries()) != 1 {
				t.Errorf("expected one entry, got %d", len(c.Entries()))
			}
		})
	}
}
