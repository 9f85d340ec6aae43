// Package statuscheck aggregates readiness checks for external dependencies.
package statuscheck

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Status represents the readiness of a subsystem.
type Status struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Checker aggregates health checks for the volume bucket, redis and
// configured vision providers.
type Checker struct {
	redis        RedisPinger
	s3Bucket     string
	openAIKey    string
	anthropicKey string
}

// Options configures the Checker.
type Options struct {
	Redis        RedisPinger
	S3Bucket     string
	OpenAIKey    string
	AnthropicKey string
}

func New(opts Options) *Checker {
	return &Checker{
		redis:        opts.Redis,
		s3Bucket:     opts.S3Bucket,
		openAIKey:    opts.OpenAIKey,
		anthropicKey: opts.AnthropicKey,
	}
}

// CheckAll runs every check with a bounded deadline per dependency.
func (c *Checker) CheckAll(ctx context.Context) []Status {
	var out []Status
	out = append(out, c.checkRedis(ctx))
	out = append(out, c.checkBucket(ctx))
	out = append(out, Status{Name: "openai", OK: c.openAIKey != "", Message: keyMessage(c.openAIKey)})
	out = append(out, Status{Name: "anthropic", OK: c.anthropicKey != "", Message: keyMessage(c.anthropicKey)})
	return out
}

func (c *Checker) checkRedis(ctx context.Context) Status {
	if c.redis == nil {
		return Status{Name: "redis", OK: false, Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.redis.Ping(ctx); err != nil {
		return Status{Name: "redis", OK: false, Message: err.Error()}
	}
	return Status{Name: "redis", OK: true}
}

func (c *Checker) checkBucket(ctx context.Context) Status {
	if c.s3Bucket == "" {
		return Status{Name: "volume", OK: false, Message: "no bucket configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return Status{Name: "volume", OK: false, Message: err.Error()}
	}
	cli := s3.NewFromConfig(cfg)
	if _, err := cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.s3Bucket)}); err != nil {
		return Status{Name: "volume", OK: false, Message: err.Error()}
	}
	return Status{Name: "volume", OK: true}
}

func keyMessage(key string) string {
	if key == "" {
		return "missing API key"
	}
	return ""
}
