// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid recommend config")

// Config contains all configuration for the recommendation pipeline.
type Config struct {
	// RecommendationCount caps each of the three recommendation lists.
	// Default: 4.
	RecommendationCount int `json:"recommendation_count"`

	// Schedule controls the updater tick loop and user sharding.
	Schedule ScheduleConfig `json:"schedule"`
}

// ScheduleConfig contains updater scheduling parameters.
type ScheduleConfig struct {
	// TickInterval is the time between two updater ticks.
	// Default: 10s.
	TickInterval time.Duration `json:"tick_interval"`

	// FullCycleTicks is the number of ticks after which every known user has
	// been refreshed once. Tick 0 of each cycle also refreshes the whole catalog.
	// Default: 200.
	FullCycleTicks int `json:"full_cycle_ticks"`

	// ShardCount is the number of user shards in one full cycle.
	// FullCycleTicks must be a multiple of ShardCount.
	// Default: 10.
	ShardCount int `json:"shard_count"`

	// FetchConcurrency bounds concurrent upstream requests within a tick.
	// 1 fetches sequentially.
	// Default: 1.
	FetchConcurrency int `json:"fetch_concurrency"`

	// AbortOnError stops the updater permanently after a failed tick.
	// When false the failed tick is returned to the supervisor for a restart.
	// Default: true.
	AbortOnError bool `json:"abort_on_error"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		RecommendationCount: 4,
		Schedule: ScheduleConfig{
			TickInterval:     10 * time.Second,
			FullCycleTicks:   200,
			ShardCount:       10,
			FetchConcurrency: 1,
			AbortOnError:     true,
		},
	}
}

// TicksPerShard returns how many ticks pass between two shard passes.
func (s ScheduleConfig) TicksPerShard() int {
	return s.FullCycleTicks / s.ShardCount
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RecommendationCount < 1 {
		return fmt.Errorf("%w: recommendation_count must be positive, got %d", ErrInvalidConfig, c.RecommendationCount)
	}

	s := c.Schedule
	if s.TickInterval <= 0 {
		return fmt.Errorf("%w: schedule.tick_interval must be positive, got %v", ErrInvalidConfig, s.TickInterval)
	}
	if s.FullCycleTicks < 1 {
		return fmt.Errorf("%w: schedule.full_cycle_ticks must be positive, got %d", ErrInvalidConfig, s.FullCycleTicks)
	}
	if s.ShardCount < 1 {
		return fmt.Errorf("%w: schedule.shard_count must be positive, got %d", ErrInvalidConfig, s.ShardCount)
	}
	if s.ShardCount > s.FullCycleTicks {
		return fmt.Errorf("%w: schedule.shard_count must be <= schedule.full_cycle_ticks, got %d > %d",
			ErrInvalidConfig, s.ShardCount, s.FullCycleTicks)
	}
	if s.FullCycleTicks%s.ShardCount != 0 {
		return fmt.Errorf("%w: schedule.full_cycle_ticks (%d) must be a multiple of schedule.shard_count (%d)",
			ErrInvalidConfig, s.FullCycleTicks, s.ShardCount)
	}
	if s.FetchConcurrency < 1 {
		return fmt.Errorf("%w: schedule.fetch_concurrency must be positive, got %d", ErrInvalidConfig, s.FetchConcurrency)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
