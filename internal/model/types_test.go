package model

import "testing"

func TestCommandResultClassification(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		ok, interrupted bool
		failed          bool
	}{
		{"success", 0, true, false, false},
		{"generic failure", 1, false, false, true},
		{"not found", 127, false, false, true},
		{"interrupt", 130, false, true, false},
		{"sigkill", 137, false, false, true},
		{"max status", 255, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CommandResult{Status: tt.status}
			if r.Ok() != tt.ok {
				t.Errorf("Ok() = %v, want %v", r.Ok(), tt.ok)
			}
			if r.Interrupted() != tt.interrupted {
				t.Errorf("Interrupted() = %v, want %v", r.Interrupted(), tt.interrupted)
			}
			if r.Failed() != tt.failed {
				t.Errorf("Failed() = %v, want %v", r.Failed(), tt.failed)
			}
		})
	}
}
