package domain

import (
	"testing"
	"time"
)

func TestNormalizeWatermarkNilMeansFullSync(t *testing.T) {
	if got := NormalizeWatermark(nil); got != nil {
		t.Fatalf("expected nil cursor for nil watermark, got %v", got)
	}
}

func TestNormalizeWatermarkSubtractsSkew(t *testing.T) {
	since := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	got := NormalizeWatermark(&since)
	if got == nil {
		t.Fatal("expected non-nil cursor")
	}

	want := since.Add(-WatermarkSkew)
	if !got.Equal(want) {
		t.Fatalf("expected cursor %v, got %v", want, got)
	}
	if got.After(since) {
		t.Fatal("normalized cursor must never be after the client watermark")
	}
}

func TestNormalizeWatermarkConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	since := time.Date(2025, 6, 15, 9, 0, 0, 0, loc)

	got := NormalizeWatermark(&since)
	if got == nil {
		t.Fatal("expected non-nil cursor")
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC cursor, got %v", got.Location())
	}
	if !got.Equal(since.Add(-WatermarkSkew)) {
		t.Fatalf("expected instant preserved across zones, got %v", got)
	}
}

func TestNormalizeWatermarkClampsToSafeEpoch(t *testing.T) {
	cases := []struct {
		name  string
		since time.Time
	}{
		{"before epoch", time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC)},
		{"zero time", time.Time{}},
		{"just inside skew of epoch", SafeEpoch.Add(time.Second)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			since := tc.since
			got := NormalizeWatermark(&since)
			if got == nil {
				t.Fatal("expected non-nil cursor")
			}
			if !got.Equal(SafeEpoch) {
				t.Fatalf("expected clamp to %v, got %v", SafeEpoch, got)
			}
		})
	}
}

func TestNormalizeWatermarkDoesNotMutateInput(t *testing.T) {
	since := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	original := since

	_ = NormalizeWatermark(&since)
	if !since.Equal(original) {
		t.Fatalf("input watermark mutated: %v", since)
	}
}
