package config

import "testing"

func TestGetFeatureFlag(t *testing.T) {
	t.Cleanup(func() { SetCurrent(&Config{}) })

	SetCurrent(&Config{})
	if GetFeatureFlag("inbox_consumer") {
		t.Fatalf("flag should default to false when unset")
	}

	SetCurrent(&Config{FeatureFlags: map[string]bool{"inbox_consumer": true}})
	if !GetFeatureFlag("inbox_consumer") {
		t.Fatalf("flag set true in config, got false")
	}
	if GetFeatureFlag("unknown_flag") {
		t.Fatalf("unknown flag should be false")
	}
}

func TestGetThreshold(t *testing.T) {
	t.Cleanup(func() { SetCurrent(&Config{}) })

	SetCurrent(&Config{})
	if got := GetThreshold("mq_receive_batch", 16); got != 16 {
		t.Fatalf("threshold default = %d, want 16", got)
	}

	SetCurrent(&Config{Thresholds: map[string]int64{"mq_receive_batch": 32}})
	if got := GetThreshold("mq_receive_batch", 16); got != 32 {
		t.Fatalf("threshold = %d, want 32", got)
	}
}
