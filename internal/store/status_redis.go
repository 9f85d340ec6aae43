// Package store persists processing job status in Redis so progress survives
// across requests and instances.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Status is the externally visible state of one processing job.
type Status struct {
	Status        string                 `json:"status"` // queued|processing|success|failed
	Progress      int                    `json:"progress"`
	Message       string                 `json:"message"`
	PagesTotal    int                    `json:"pages_total,omitempty"`
	PagesDone     int                    `json:"pages_done,omitempty"`
	FragmentCount int                    `json:"fragment_count,omitempty"`
	Start         *time.Time             `json:"start_time,omitempty"`
	End           *time.Time             `json:"end_time,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type RedisStatus struct {
	client *redis.Client
	keyNS  string
}

func NewRedisStatus(redisURL string) (*RedisStatus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStatus{client: c, keyNS: "drawprep:job"}, nil
}

func (s *RedisStatus) key(jobID string) string {
	return fmt.Sprintf("%s:%s:status", s.keyNS, jobID)
}

func (s *RedisStatus) Set(ctx context.Context, jobID string, st Status) error {
	m := map[string]interface{}{
		"status":    st.Status,
		"progress":  st.Progress,
		"message":   st.Message,
		"pages":     st.PagesTotal,
		"done":      st.PagesDone,
		"fragments": st.FragmentCount,
	}
	if st.Start != nil {
		m["start"] = st.Start.Format(time.RFC3339Nano)
	}
	if st.End != nil {
		m["end"] = st.End.Format(time.RFC3339Nano)
	}
	if st.Metadata != nil {
		b, _ := json.Marshal(st.Metadata)
		m["metadata"] = string(b)
	}
	return s.client.HSet(ctx, s.key(jobID), m).Err()
}

func (s *RedisStatus) Get(ctx context.Context, jobID string) (Status, bool, error) {
	res, err := s.client.HGetAll(ctx, s.key(jobID)).Result()
	if err != nil {
		return Status{}, false, err
	}
	if len(res) == 0 {
		return Status{}, false, nil
	}
	st := Status{}
	st.Status = res["status"]
	st.Message = res["message"]
	st.Progress = atoi(res["progress"])
	st.PagesTotal = atoi(res["pages"])
	st.PagesDone = atoi(res["done"])
	st.FragmentCount = atoi(res["fragments"])
	if v := res["start"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.Start = &t
		}
	}
	if v := res["end"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.End = &t
		}
	}
	if v := res["metadata"]; v != "" {
		_ = json.Unmarshal([]byte(v), &st.Metadata)
	}
	return st, true, nil
}

func (s *RedisStatus) Close() error { return s.client.Close() }

// Ping reports connectivity for health checks.
func (s *RedisStatus) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func atoi(s string) int {
	var n int
	// ignore parse error; default 0
	_, _ = fmt.Sscan(s, &n)
	return n
}
