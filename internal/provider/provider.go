// Package provider holds the adapters for external search backends. Each
// adapter normalizes one backend's request/response shapes into SearchHits;
// the orchestrator depends only on the interfaces here, never on a concrete
// adapter.
package provider

import (
	"context"

	"github.com/FranksOps/scout/internal/model"
)

// Provider abstracts a search backend that can return candidate hits for a
// query. Implementations must honor their own network timeout and return an
// empty hit list plus a non-nil error on failure; the caller treats that as
// "this provider contributed nothing", not as a query failure.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error)
}

// InstantAnswerer is an optional capability: a provider that can supply a
// structured direct-answer block for a query.
type InstantAnswerer interface {
	InstantAnswer(ctx context.Context, query string) (*model.InstantAnswer, error)
}

// KnowledgePanelProvider is an optional capability: a provider that can
// supply an encyclopedic summary panel for a query.
type KnowledgePanelProvider interface {
	KnowledgePanel(ctx context.Context, query string) (*model.KnowledgePanel, error)
}
