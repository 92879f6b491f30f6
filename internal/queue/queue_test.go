package queue

import (
	"reflect"
	"strings"
	"testing"
)

func TestLanes(t *testing.T) {
	lanes := Lanes()
	if len(lanes) != 12 {
		t.Fatalf("len(Lanes()) = %d, want 12", len(lanes))
	}

	seen := make(map[string]bool)
	for _, lane := range lanes {
		if seen[lane] {
			t.Errorf("duplicate lane %q", lane)
		}
		seen[lane] = true
		if !strings.HasSuffix(lane, "alerts") {
			t.Errorf("lane %q does not follow the alerts naming", lane)
		}
	}

	for _, want := range []string{"security-alerts", "security-high-alerts", "security-critical-alerts", "system-critical-alerts"} {
		if !seen[want] {
			t.Errorf("Lanes() missing %q", want)
		}
	}
}

func TestParseBrokers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "localhost:9092", []string{"localhost:9092"}},
		{"multiple with spaces", "kafka-1:9092, kafka-2:9092 ,kafka-3:9092", []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseBrokers(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBrokers(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
