package inventory

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{input: "Idle", want: StatusIdle},
		{input: "Running", want: StatusRunning},
		{input: "Offline", want: StatusOffline},
		{input: "running", wantErr: true},
		{input: "", wantErr: true},
		{input: "ALL", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("ParseStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatusesAreValid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("Statuses() returned invalid status %q", s)
		}
	}
	if Status("Broken").Valid() {
		t.Error("Valid() accepted an unknown status")
	}
}
