package payment

import "testing"

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"settlement", StatusSuccess},
		{"capture", StatusSuccess},
		{"deny", StatusFailed},
		{"cancel", StatusFailed},
		{"expire", StatusFailed},
		{"failure", StatusFailed},
		{"pending", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := mapStatus(tt.in); got != tt.want {
			t.Fatalf("mapStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
