// Package navigator resolves the episodes before and after the one playing.
package navigator

import (
	"context"
	"errors"
	"sort"

	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/queue"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"
)

// Catalog lists the children of a show or season.
type Catalog interface {
	Children(ctx context.Context, id string) ([]media.Item, error)
}

// Queue yields adjacency from an active play queue.
type Queue interface {
	Adjacent(ctx context.Context, item media.Item) (prev, next mo.Option[media.Item], err error)
}

// Adjacent holds the neighbours of an item. Either may be absent.
type Adjacent struct {
	Previous mo.Option[media.Item]
	Next     mo.Option[media.Item]
}

// Navigator prefers the play queue and falls back to season siblings.
type Navigator struct {
	catalog Catalog
	queue   Queue
}

func New(catalog Catalog, q Queue) *Navigator {
	return &Navigator{catalog: catalog, queue: q}
}

// Resolve never fails: errors are logged and produce absent neighbours.
func (n *Navigator) Resolve(ctx context.Context, item media.Item) Adjacent {
	if !item.IsEpisode() {
		return Adjacent{}
	}

	logger := log.With(log.Fields{"item": item.ID})

	if n.queue != nil {
		prev, next, err := n.queue.Adjacent(ctx, item)
		if err == nil {
			return Adjacent{Previous: prev, Next: next}
		}
		if !errors.Is(err, queue.ErrNoQueue) {
			logger.Warnf("queue adjacency unavailable, using siblings: %v", err)
		}
	}

	adj, err := n.siblings(ctx, item)
	if err != nil {
		logger.Warnf("adjacent episodes unavailable: %v", err)
		return Adjacent{}
	}
	return adj
}

func (n *Navigator) siblings(ctx context.Context, item media.Item) (Adjacent, error) {
	episodes, err := n.episodes(ctx, item.ParentID)
	if err != nil {
		return Adjacent{}, err
	}

	_, i, ok := lo.FindIndexOf(episodes, func(e media.Item) bool { return e.ID == item.ID })
	if !ok {
		return Adjacent{}, errors.New("item missing from its season")
	}

	var adj Adjacent
	if i > 0 {
		adj.Previous = mo.Some(episodes[i-1])
	}
	if i < len(episodes)-1 {
		adj.Next = mo.Some(episodes[i+1])
	}

	if adj.Previous.IsPresent() && adj.Next.IsPresent() {
		return adj, nil
	}

	if err := n.crossSeasons(ctx, item, &adj); err != nil {
		log.With(log.Fields{"item": item.ID}).Warnf("crossing season boundary failed: %v", err)
	}
	return adj, nil
}

// crossSeasons fills missing neighbours from the last episode of the previous season
// and the first episode of the next one. Specials are only crossed into from specials.
func (n *Navigator) crossSeasons(ctx context.Context, item media.Item, adj *Adjacent) error {
	if item.GrandparentID == "" {
		return nil
	}

	seasons, err := n.catalog.Children(ctx, item.GrandparentID)
	if err != nil {
		return err
	}

	seasons = lo.Filter(seasons, func(s media.Item, _ int) bool {
		return s.SeasonNumber > 0 || item.SeasonNumber == 0
	})
	sort.SliceStable(seasons, func(i, j int) bool { return seasons[i].SeasonNumber < seasons[j].SeasonNumber })

	_, i, ok := lo.FindIndexOf(seasons, func(s media.Item) bool { return s.ID == item.ParentID })
	if !ok {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	if adj.Previous.IsAbsent() && i > 0 {
		g.Go(func() error {
			eps, err := n.episodes(ctx, seasons[i-1].ID)
			if err == nil && len(eps) > 0 {
				adj.Previous = mo.Some(eps[len(eps)-1])
			}
			return err
		})
	}

	if adj.Next.IsAbsent() && i < len(seasons)-1 {
		g.Go(func() error {
			eps, err := n.episodes(ctx, seasons[i+1].ID)
			if err == nil && len(eps) > 0 {
				adj.Next = mo.Some(eps[0])
			}
			return err
		})
	}

	return g.Wait()
}

func (n *Navigator) episodes(ctx context.Context, seasonID string) ([]media.Item, error) {
	if seasonID == "" {
		return nil, errors.New("episode has no season")
	}

	items, err := n.catalog.Children(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	episodes := lo.Filter(items, func(e media.Item, _ int) bool { return e.IsEpisode() })
	sort.SliceStable(episodes, func(i, j int) bool { return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber })
	return episodes, nil
}
