package seats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"buslane/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AtomicLocks maintains the Redis mirror of seat holds. Postgres is the
// authority for seat state; these TTL'd lock keys give cheap contention
// fast-fail and power the live seat map without touching the database.
type AtomicLocks struct {
	redis *redis.Client
}

// NewAtomicLocks creates a new atomic lock handler
func NewAtomicLocks(redisClient *redis.Client) *AtomicLocks {
	return &AtomicLocks{redis: redisClient}
}

// LockConflictError reports the first seat whose lock was already taken
type LockConflictError struct {
	SeatID string
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf("seat lock already taken: %s", e.SeatID)
}

// Lua script for atomic seat locking - prevents race conditions
const luaAtomicSeatLock = `
-- KEYS[1] = hold_id
-- ARGV[1] = customer_id
-- ARGV[2] = trip_id
-- ARGV[3] = ttl_seconds
-- ARGV[4..N] = seat_ids

local hold_id = KEYS[1]
local customer_id = ARGV[1]
local trip_id = ARGV[2]
local ttl = tonumber(ARGV[3])

-- Check that no requested seat is already locked
for i = 4, #ARGV do
    local seat_id = ARGV[i]
    local seat_lock_key = "buslane:seat_hold:" .. seat_id

    if redis.call("EXISTS", seat_lock_key) == 1 then
        return {0, seat_id}
    end
end

-- All seats are unlocked, lock them atomically
local hold_key = "buslane:hold:" .. hold_id
local hold_seats_key = "buslane:hold_seats:" .. hold_id
local created_at = redis.call("TIME")[1]

redis.call("HMSET", hold_key,
    "customer_id", customer_id,
    "trip_id", trip_id,
    "seat_count", #ARGV - 3,
    "created_at", created_at
)
redis.call("EXPIRE", hold_key, ttl)

for i = 4, #ARGV do
    local seat_id = ARGV[i]
    local seat_lock_key = "buslane:seat_hold:" .. seat_id
    local lock_value = customer_id .. ":" .. hold_id

    redis.call("SETEX", seat_lock_key, ttl, lock_value)
    redis.call("SADD", hold_seats_key, seat_id)
end

redis.call("EXPIRE", hold_seats_key, ttl)

return {1, "success"}
`

// Lua script for atomic lock release
const luaAtomicSeatUnlock = `
-- KEYS[1] = hold_id
local hold_id = KEYS[1]

local hold_key = "buslane:hold:" .. hold_id
local hold_seats_key = "buslane:hold_seats:" .. hold_id

local seat_ids = redis.call("SMEMBERS", hold_seats_key)

for i = 1, #seat_ids do
    local seat_lock_key = "buslane:seat_hold:" .. seat_ids[i]
    redis.call("DEL", seat_lock_key)
end

redis.call("DEL", hold_key)
redis.call("DEL", hold_seats_key)

return {1, #seat_ids}
`

// AtomicHoldSeats atomically locks multiple seats using the Lua script
func (a *AtomicLocks) AtomicHoldSeats(ctx context.Context, seatIDs []uuid.UUID, customerID, holdID, tripID string, ttl time.Duration) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	keys := []string{holdID}
	args := []interface{}{
		customerID,
		tripID,
		strconv.Itoa(int(ttl.Seconds())),
	}
	for _, seatID := range seatIDs {
		args = append(args, seatID.String())
	}

	result, err := a.redis.EvalSha(ctx, luaAtomicSeatLock, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = a.redis.Eval(ctx, luaAtomicSeatLock, keys, args...).Result()
		if err != nil {
			return fmt.Errorf("failed to execute atomic seat lock: %w", err)
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		if conflictSeat, ok := resultArray[1].(string); ok {
			return &LockConflictError{SeatID: conflictSeat}
		}
		return fmt.Errorf("failed to lock seats")
	}

	return nil
}

// AtomicReleaseHold atomically releases all locks held by a hold. Releasing
// a hold whose keys already expired is a safe no-op.
func (a *AtomicLocks) AtomicReleaseHold(ctx context.Context, holdID string) (int, error) {
	if a.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	result, err := a.redis.EvalSha(ctx, luaAtomicSeatUnlock, []string{holdID}).Result()
	if err != nil {
		result, err = a.redis.Eval(ctx, luaAtomicSeatUnlock, []string{holdID}).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to execute atomic seat unlock: %w", err)
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return 0, fmt.Errorf("unexpected result format from Lua script")
	}

	releasedCount, ok := resultArray[1].(int64)
	if !ok {
		return 0, fmt.Errorf("invalid released count in Lua script result")
	}

	return int(releasedCount), nil
}

// CheckSeatLocks returns the lock value for every currently locked seat
// in seatIDs (seatID -> "customerID:holdID")
func (a *AtomicLocks) CheckSeatLocks(ctx context.Context, seatIDs []uuid.UUID) (map[string]string, error) {
	locks := make(map[string]string)
	if a.redis == nil {
		return locks, nil
	}

	for _, seatID := range seatIDs {
		lockKey := constants.KEY_SEAT_HOLD + seatID.String()
		lockValue, err := a.redis.Get(ctx, lockKey).Result()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}
		locks[seatID.String()] = lockValue
	}

	return locks, nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (a *AtomicLocks) PreloadScripts(ctx context.Context) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if _, err := a.redis.ScriptLoad(ctx, luaAtomicSeatLock).Result(); err != nil {
		return fmt.Errorf("failed to load seat lock script: %w", err)
	}

	if _, err := a.redis.ScriptLoad(ctx, luaAtomicSeatUnlock).Result(); err != nil {
		return fmt.Errorf("failed to load seat unlock script: %w", err)
	}

	return nil
}
