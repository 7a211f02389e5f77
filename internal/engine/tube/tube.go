// Package tube answers the four query shapes (video, channel root, channel
// page, search) by combining the resolver, the pagination walker and
// secondary-channel discovery over an upstream.Client.
//
// The service keeps no state between calls. The client's session belongs to
// the caller.
package tube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/discovery"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/resolve"
	"github.com/anatolykoptev/go_tube/internal/engine/timeparse"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
	"github.com/anatolykoptev/go_tube/internal/engine/walker"
)

// DefaultTab is listed when a page request names no tab.
const DefaultTab = "videos"

// Options tunes the service.
type Options struct {
	BatchWidth      int           // concurrent detail fetches per batch, default 5
	Pacing          time.Duration // delay between batches, 0 disables
	DefaultPageSize int           // default 30
	Discovery       discovery.Config
	Normalizer      *timeparse.Normalizer // nil = wall clock
}

// OptionsFrom derives Options from the engine configuration.
func OptionsFrom(c engine.Config) Options {
	return Options{
		BatchWidth:      c.EnrichBatchWidth,
		Pacing:          c.EnrichPacing,
		DefaultPageSize: c.DefaultPageSize,
		Discovery:       discovery.ConfigFrom(c),
	}
}

// Service is the aggregation entry point.
type Service struct {
	client      upstream.Client
	opts        Options
	items       *resolve.ItemChains
	collections *resolve.CollectionChains
	walker      *walker.Walker
	discoverer  *discovery.Discoverer
}

// New builds a Service over c.
func New(c upstream.Client, opts Options) *Service {
	if opts.BatchWidth <= 0 {
		opts.BatchWidth = 5
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 30
	}
	if opts.Discovery.LinkFields == nil {
		opts.Discovery = discovery.DefaultConfig()
	}
	return &Service{
		client:      c,
		opts:        opts,
		items:       resolve.NewItemChains(opts.Normalizer),
		collections: resolve.NewCollectionChains(),
		walker:      walker.New(c),
		discoverer:  discovery.New(c, opts.Discovery),
	}
}

// GetItem fetches and normalizes a single video. Collaborator failures
// (not found, unavailable, transport) are returned wrapped.
func (s *Service) GetItem(ctx context.Context, id string) (engine.NormalizedItem, error) {
	engine.IncrItemRequests()
	doc, err := s.client.FetchItem(ctx, id)
	if err != nil {
		return engine.NormalizedItem{}, fmt.Errorf("get item: %w", err)
	}
	return s.items.Item(resolve.NewSource(id, doc, rawnode.Node{})), nil
}

// GetCollection fetches a channel root. With includeDiscovery it also
// searches for a linked secondary channel; a miss leaves Secondary nil.
func (s *Service) GetCollection(ctx context.Context, id string, includeDiscovery bool) (engine.Collection, error) {
	engine.IncrCollectionRequests()
	doc, err := s.client.FetchCollection(ctx, id)
	if err != nil {
		return engine.Collection{}, fmt.Errorf("get collection: %w", err)
	}

	src := resolve.CollectionSource{ID: id, Doc: doc}
	out := engine.Collection{
		ID:             s.collections.ID.Value(src),
		Title:          s.collections.Title.Value(src),
		Description:    s.collections.Description.Value(src),
		ThumbnailURL:   s.collections.Thumbnail.Value(src),
		SubscriberText: s.collections.Subscribers.Value(src),
		Tabs:           resolve.TabNames(doc),
		IsCategory:     s.discoverer.IsCategory(doc),
	}
	if includeDiscovery {
		if res, ok := s.discoverer.Discover(ctx, discovery.Subject{ID: out.ID, Doc: doc}); ok {
			out.Secondary = &res
		}
	}
	return out, nil
}

// GetCollectionPage walks a channel tab to the requested 1-based page and
// enriches each row with its video detail. A failed detail fetch degrades
// that row to listing-only fields with Error set; the page is still returned.
func (s *Service) GetCollectionPage(ctx context.Context, id, tab string, page, pageSize int) (engine.CollectionPage, error) {
	engine.IncrPageRequests()
	if tab == "" {
		tab = DefaultTab
	}
	if pageSize <= 0 {
		pageSize = s.opts.DefaultPageSize
	}
	src := upstream.ListingSource{CollectionID: id, Tab: tab}
	res, err := s.walker.Advance(ctx, func(ctx context.Context) (upstream.ListingPage, error) {
		return s.client.FetchListingFirstPage(ctx, src)
	}, page, pageSize)
	if err != nil {
		return engine.CollectionPage{}, fmt.Errorf("get collection page %s/%s: %w", id, tab, err)
	}

	return engine.CollectionPage{
		CollectionID:  id,
		Tab:           tab,
		RequestedPage: max(page, 1),
		Page:          res.Page,
		PageSize:      pageSize,
		HasMore:       res.HasMore,
		Items:         s.enrich(ctx, s.sources(res.Items)),
	}, nil
}

// GetCollectionAll walks a channel tab to exhaustion. Rows are resolved as
// listed, without per-video detail fetches.
func (s *Service) GetCollectionAll(ctx context.Context, id, tab string) (engine.CollectionListing, error) {
	engine.IncrPageRequests()
	if tab == "" {
		tab = DefaultTab
	}
	src := upstream.ListingSource{CollectionID: id, Tab: tab}
	var rows []rawnode.Node
	err := engine.TrackOperation(ctx, "collection_all", func(ctx context.Context) error {
		var err error
		rows, err = s.walker.All(ctx, func(ctx context.Context) (upstream.ListingPage, error) {
			return s.client.FetchListingFirstPage(ctx, src)
		})
		return err
	})
	if err != nil {
		return engine.CollectionListing{}, fmt.Errorf("get collection listing %s/%s: %w", id, tab, err)
	}
	items := s.rowItems(s.sources(rows))
	return engine.CollectionListing{CollectionID: id, Tab: tab, Total: len(items), Items: items}, nil
}

// Search returns one page of search rows, resolved directly from the
// listing without detail fetches.
func (s *Service) Search(ctx context.Context, query string, page int) (engine.SearchResult, error) {
	engine.IncrSearchRequests()
	res, err := s.walker.Advance(ctx, func(ctx context.Context) (upstream.ListingPage, error) {
		return s.client.FetchSearch(ctx, query)
	}, page, 0)
	if err != nil {
		return engine.SearchResult{}, fmt.Errorf("search %q: %w", query, err)
	}
	return engine.SearchResult{
		Query:   query,
		Page:    res.Page,
		HasMore: res.HasMore,
		Items:   s.rowItems(s.sources(res.Items)),
	}, nil
}

// sources turns raw rows into resolver sources, dropping rows that carry no
// video id (ads, continuation stubs, section headers).
func (s *Service) sources(rows []rawnode.Node) []resolve.Source {
	out := make([]resolve.Source, 0, len(rows))
	for _, row := range rows {
		src := resolve.NewSource("", rawnode.Node{}, row)
		if src.ID == "" {
			slog.Debug("tube: skipping row without id", slog.String("kind", src.RowKind))
			continue
		}
		out = append(out, src)
	}
	return out
}

func (s *Service) rowItems(srcs []resolve.Source) []engine.NormalizedItem {
	out := make([]engine.NormalizedItem, len(srcs))
	for i, src := range srcs {
		out[i] = s.items.Item(src)
	}
	return out
}

// enrich fetches details in batches of BatchWidth, pacing batches apart.
// Order follows the listing.
func (s *Service) enrich(ctx context.Context, srcs []resolve.Source) []engine.NormalizedItem {
	out := make([]engine.NormalizedItem, len(srcs))
	var pace *rate.Limiter
	if s.opts.Pacing > 0 {
		pace = rate.NewLimiter(rate.Every(s.opts.Pacing), 1)
	}

	width := s.opts.BatchWidth
	for start := 0; start < len(srcs); start += width {
		if pace != nil {
			if err := pace.Wait(ctx); err != nil {
				slog.Debug("tube: pacing skipped", slog.Any("error", err))
			}
		}
		end := min(start+width, len(srcs))

		var g errgroup.Group
		g.SetLimit(width)
		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i] = s.enrichOne(ctx, srcs[i])
				return nil
			})
		}
		_ = g.Wait()
	}
	return out
}

func (s *Service) enrichOne(ctx context.Context, row resolve.Source) engine.NormalizedItem {
	doc, err := s.client.FetchItem(ctx, row.ID)
	if err != nil {
		engine.IncrDetailFailures()
		slog.Debug("tube: detail fetch failed, using listing row",
			slog.String("id", row.ID), slog.Any("error", err))
		item := s.items.Item(row)
		item.Error = "detail_" + upstream.Kind(err)
		return item
	}
	return s.items.Item(row.WithDetail(doc))
}
