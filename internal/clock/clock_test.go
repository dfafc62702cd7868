package clock

import (
	"testing"
	"time"
)

func TestManual(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManual(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", c.Now(), start)
	}
	got := c.Advance(8 * 24 * time.Hour)
	if want := start.AddDate(0, 0, 8); !got.Equal(want) || !c.Now().Equal(want) {
		t.Errorf("Advance = %v, want %v", got, want)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("Set: Now = %v, want %v", c.Now(), start)
	}
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	if got.Before(before.Add(-time.Second)) || got.Location() != time.UTC {
		t.Errorf("System.Now = %v", got)
	}
}
