package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"docassist/internal/config"
	"docassist/internal/model"
)

const sessionTTL = 30 * 24 * time.Hour

// redisStore implements Store on top of Redis lists, one list per user
// per concern, trimmed on every write.
type redisStore struct {
	rdb      *redis.Client
	maxTurns int
	maxItems int
}

// NewRedis connects to Redis and verifies connectivity.
func NewRedis(cfg config.RedisConfig, maxTurns, maxItems int) (Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if maxTurns <= 0 {
		maxTurns = 10
	}
	if maxItems <= 0 {
		maxItems = 10
	}
	return &redisStore{rdb: rdb, maxTurns: maxTurns, maxItems: maxItems}, nil
}

func historyKey(userID string) string { return "session:" + userID + ":history" }

func filesKey(userID string, kind FileKind) string {
	return "session:" + userID + ":" + string(kind) + "s"
}

func (s *redisStore) AppendHistory(ctx context.Context, userID string, turn model.ChatTurn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	return s.pushTrimmed(ctx, historyKey(userID), payload, s.maxTurns)
}

func (s *redisStore) History(ctx context.Context, userID string) ([]model.ChatTurn, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	turns := make([]model.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn model.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *redisStore) SaveFile(ctx context.Context, userID string, kind FileKind, info FileInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal file info: %w", err)
	}
	return s.pushTrimmed(ctx, filesKey(userID, kind), payload, s.maxItems)
}

func (s *redisStore) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	docs, err := s.files(ctx, userID, KindDocument)
	if err != nil {
		return nil, err
	}
	images, err := s.files(ctx, userID, KindImage)
	if err != nil {
		return nil, err
	}
	return &Snapshot{History: history, Documents: docs, Images: images}, nil
}

func (s *redisStore) Context(ctx context.Context, userID string) (string, error) {
	docs, err := s.files(ctx, userID, KindDocument)
	if err != nil {
		return "", err
	}
	images, err := s.files(ctx, userID, KindImage)
	if err != nil {
		return "", err
	}
	return renderContext(docs, images), nil
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, historyKey(userID)).Err()
}

func (s *redisStore) files(ctx context.Context, userID string, kind FileKind) ([]FileInfo, error) {
	raw, err := s.rdb.LRange(ctx, filesKey(userID, kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s list: %w", kind, err)
	}
	items := make([]FileInfo, 0, len(raw))
	for _, item := range raw {
		var info FileInfo
		if err := json.Unmarshal([]byte(item), &info); err != nil {
			continue
		}
		items = append(items, info)
	}
	return items, nil
}

// pushTrimmed appends, trims the list to its cap, and refreshes the TTL.
func (s *redisStore) pushTrimmed(ctx context.Context, key string, payload []byte, limit int) error {
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-limit), -1)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push to %s: %w", key, err)
	}
	return nil
}

// renderContext formats remembered uploads the way the chat prompt
// consumes them.
func renderContext(docs, images []FileInfo) string {
	if len(docs) == 0 && len(images) == 0 {
		return ""
	}
	out := ""
	if len(docs) > 0 {
		out += "Saved documents:\n"
		for i, d := range docs {
			out += renderItem(i, d)
		}
	}
	if len(images) > 0 {
		if out != "" {
			out += "\n"
		}
		out += "Saved images:\n"
		for i, img := range images {
			out += renderItem(i, img)
		}
	}
	return out
}

func renderItem(i int, f FileInfo) string {
	line := strconv.Itoa(i+1) + ". " + f.Name
	if f.Description != "" {
		line += " - " + f.Description
	}
	if !f.UploadedAt.IsZero() {
		line += " (" + f.UploadedAt.Format("2006-01-02") + ")"
	}
	return line + "\n"
}
