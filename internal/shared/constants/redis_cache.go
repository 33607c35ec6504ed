package constants

import (
	"fmt"
	"time"
)

// Redis key and TTL catalogue for the buslane backend.
// Pattern: buslane:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

// Semi-static data (changes occasionally)
const (
	TTL_TRIP_DETAIL = 1 * time.Hour    // trip metadata
	TTL_TRIP_LIST   = 15 * time.Minute // upcoming trip listings
)

// Highly dynamic data (real-time sensitive)
const (
	TTL_SEATMAP_AVAILABLE = 15 * time.Second // effective seat map per trip
)

// ================== REDIS KEY PREFIXES ==================

const CACHE_PREFIX = "buslane"

// Seat hold lock keys. These mirror the authoritative Postgres hold with a
// TTL equal to the hold lease; the sweeper clears them on expiry as well.
const (
	KEY_SEAT_HOLD  = CACHE_PREFIX + ":seat_hold:"  // + seat-id -> "customerID:holdID"
	KEY_HOLD       = CACHE_PREFIX + ":hold:"       // + hold-id (hash: customer_id, trip_id, ...)
	KEY_HOLD_SEATS = CACHE_PREFIX + ":hold_seats:" // + hold-id (set of seat ids)
)

// Cache keys
const (
	CACHE_KEY_TRIP_DETAIL = CACHE_PREFIX + ":trips:detail:"  // + trip-id
	CACHE_KEY_TRIP_SEATS  = CACHE_PREFIX + ":trips:seatmap:" // + trip-id
)

// BuildSeatMapKey returns the cache key for a trip's effective seat map.
func BuildSeatMapKey(tripID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_TRIP_SEATS, tripID)
}

// BuildTripDetailKey returns the cache key for trip metadata.
func BuildTripDetailKey(tripID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_TRIP_DETAIL, tripID)
}
