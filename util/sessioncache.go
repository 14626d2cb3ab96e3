package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xyzhospital/frontdesk/config"
)

// MirrorSession stores session:<token> -> "<userID>:<role>" in Redis with
// the remaining session TTL and records the token in the per-user set.
// All session-cache writes are best-effort: a nil client is a no-op.
func MirrorSession(userID, role, token string, expiresAt time.Time) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	exp := time.Until(expiresAt)
	if exp <= 0 {
		return nil
	}
	val := fmt.Sprintf("%s:%s", userID, role)
	if err := rdb.Set(ctx, sessionKey(token), val, exp).Err(); err != nil {
		return err
	}
	return rdb.SAdd(ctx, userSetKey(userID), token).Err()
}

// DropSession removes the session mirror for a single token. If the
// per-user set becomes empty after removal, it is deleted.
func DropSession(userID, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return err
	}
	script := `
		local removed = redis.call('SREM', KEYS[1], ARGV[1])
		if removed > 0 then
			local count = redis.call('SCARD', KEYS[1])
			if count == 0 then
				redis.call('DEL', KEYS[1])
			end
		end
		return removed
	`
	return rdb.Eval(ctx, script, []string{userSetKey(userID)}, token).Err()
}

// DropUserSessions deletes every mirrored session for the given user and
// removes the per-user set. Best-effort: callers may ignore the error.
func DropUserSessions(userID string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	members, err := rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, tok := range members {
		_ = rdb.Del(ctx, sessionKey(tok)).Err()
	}
	return rdb.Del(ctx, userSetKey(userID)).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func userSetKey(userID string) string {
	return fmt.Sprintf("user_sessions:%s", userID)
}
