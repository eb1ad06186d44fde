package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	logger         *slog.Logger
	historySize    int
	maxScoreScript string
	purgeScript    string
}

func NewRepo(rc *redis.Client, logger *slog.Logger, historySize int) *repo {
	return &repo{
		rc:          rc,
		logger:      logger,
		historySize: historySize,
		maxScoreScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
		purgeScript: rc.ScriptLoad(context.Background(), `
			local pattern = ARGV[1]
			local cursor = "0"
			local count = 0

			repeat
				local result = redis.call('SCAN', cursor, 'MATCH', pattern)
				cursor = result[1]
				local keys = result[2]

				for i, key in ipairs(keys) do
					redis.call('DEL', key)
					count = count + 1
				end
			until cursor == "0"

			return count
		`).Val(),
	}
}

func (r repo) addWithIncrement(ctx context.Context, c redis.Scripter, key string, value interface{}) {
	c.EvalSha(ctx, r.maxScoreScript, []string{key}, value)
}

func (r repo) purgeByPattern(ctx context.Context, pattern string) error {
	return r.rc.EvalSha(ctx, r.purgeScript, []string{}, pattern).Err()
}

const roomStateTTL = 24 * time.Hour
