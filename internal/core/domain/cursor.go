package domain

import "time"

// WatermarkSkew is subtracted from every client watermark so a change
// whose server timestamp sits just before the client's reported time
// (clock drift, sub-second truncation) is still included in the pull
// window. The cost is a little redundant re-fetching, never a missed
// delta.
const WatermarkSkew = 2 * time.Second

// SafeEpoch is the lower clamp for normalized cursors. Watermarks
// older than this (malformed clients, zero values) collapse to a fixed
// floor instead of producing unbounded "since forever" queries.
var SafeEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// NormalizeWatermark converts a client-supplied watermark into the
// cursor used for change-window queries. Nil in, nil out: an absent
// watermark means full sync. The function is pure and total over valid
// time values.
func NormalizeWatermark(since *time.Time) *time.Time {
	if since == nil {
		return nil
	}

	normalized := since.UTC().Add(-WatermarkSkew)
	if normalized.Before(SafeEpoch) {
		normalized = SafeEpoch
	}
	return &normalized
}
