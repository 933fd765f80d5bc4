// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/models"
)

// Provider is the read-side handle shared with the serving layer.
// It has no upstream dependency and only takes the engine's read lock.
type Provider struct {
	engine *Engine
}

// NewProvider wraps an engine for read access.
func NewProvider(engine *Engine) *Provider {
	return &Provider{engine: engine}
}

// GetRecommendationsForUser returns the user's cached recommendations or the default.
func (p *Provider) GetRecommendationsForUser(userID models.UserID) Recommendations {
	recs, personalized := p.engine.Lookup(userID)
	metrics.RecordRecommendationLookup(personalized)
	return recs
}

// Stats returns the engine cache statistics.
func (p *Provider) Stats() EngineStats {
	return p.engine.Stats()
}
