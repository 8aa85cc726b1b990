package events

import (
	"testing"
	"time"

	"github.com/nisdos/shellsig/internal/model"
)

func TestValidate_MinimalValidResult(t *testing.T) {
	r := model.CommandResult{Session: "bash-100", Shell: "bash", Seq: 1, Status: 0, TS: time.Now().UTC()}
	if err := Validate(r); err != nil {
		t.Fatalf("expected valid result, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name string
		r    model.CommandResult
	}{
		{"missing session", model.CommandResult{Shell: "bash", Seq: 1, TS: now}},
		{"blank session", model.CommandResult{Session: "  ", Shell: "bash", Seq: 1, TS: now}},
		{"unknown shell", model.CommandResult{Session: "s", Shell: "fish", Seq: 1, TS: now}},
		{"zero seq", model.CommandResult{Session: "s", Shell: "zsh", Seq: 0, TS: now}},
		{"status too high", model.CommandResult{Session: "s", Shell: "bash", Seq: 1, Status: 256, TS: now}},
		{"negative status", model.CommandResult{Session: "s", Shell: "bash", Seq: 1, Status: -1, TS: now}},
		{"missing timestamp", model.CommandResult{Session: "s", Shell: "bash", Seq: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.r); err == nil {
				t.Fatalf("expected validation error for %+v", tt.r)
			}
		})
	}
}
