package services

import (
	"context"
	"ferreteria_server/catalog"
	"fmt"
	"strings"
)

// SearchMode tells how a search was triggered
type SearchMode string

const (
	ModeInput   SearchMode = "input"   // typing, debounced when remote
	ModeSubmit  SearchMode = "submit"  // Enter key
	ModeScan    SearchMode = "scan"    // barcode reader
	ModeRefresh SearchMode = "refresh" // server-initiated re-run
)

// ParseSearchMode maps the query parameter, defaulting to submit
func ParseSearchMode(raw string) (SearchMode, error) {
	switch SearchMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeSubmit:
		return ModeSubmit, nil
	case ModeInput:
		return ModeInput, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", raw)
	}
}

// SearchSource names where results came from
type SearchSource string

const (
	SourceCache  SearchSource = "cache"
	SourceRemote SearchSource = "remote"
)

// SearchResult is one answer to a query. Stale is set when a newer query was
// issued before this one completed.
type SearchResult struct {
	Query      catalog.Query     `json:"query"`
	Seq        uint64            `json:"seq"`
	Source     SearchSource      `json:"source"`
	Products   []catalog.Product `json:"products"`
	Superseded bool              `json:"superseded"`
	Stale      bool              `json:"stale"`
}

type searchStrategy interface {
	search(ctx context.Context, plan catalog.Plan, mode SearchMode) ([]catalog.Product, error)
	source() SearchSource
}

// memorySearch answers from the session snapshot, never debounced
type memorySearch struct {
	snap *catalog.Snapshot
}

func (m memorySearch) search(_ context.Context, plan catalog.Plan, _ SearchMode) ([]catalog.Product, error) {
	return catalog.SearchPlan(m.snap, plan), nil
}

func (m memorySearch) source() SearchSource { return SourceCache }

// remoteSearch queries the gateway, debouncing typed input
type remoteSearch struct {
	gateway  ProductGateway
	debounce *debouncer
}

func (r remoteSearch) search(ctx context.Context, plan catalog.Plan, mode SearchMode) ([]catalog.Product, error) {
	switch mode {
	case ModeInput:
		if err := r.debounce.Wait(ctx); err != nil {
			return nil, err
		}
	case ModeSubmit, ModeScan:
		// a deliberate search overrides pending typing
		r.debounce.Cancel()
	}
	return r.gateway.ListProducts(ctx, plan, catalog.MaxResults)
}

func (r remoteSearch) source() SearchSource { return SourceRemote }

// selectStrategy is the single place deciding between cache and remote
func selectStrategy(snap *catalog.Snapshot, gateway ProductGateway, debounce *debouncer) searchStrategy {
	if snap != nil {
		return memorySearch{snap: snap}
	}
	return remoteSearch{gateway: gateway, debounce: debounce}
}
