// Package portalsync pulls demand grids and logistics master data from the
// distribution portal into the local store.
package portalsync

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gresik-digital/expansion-cli/internal/model"
	"github.com/gresik-digital/expansion-cli/internal/store"
	"github.com/gresik-digital/expansion-cli/pkg/portal"
)

// Syncer orchestrates a portal-to-store refresh.
type Syncer struct {
	Store  store.Store
	Client portal.Client
	// Workers bounds concurrent site-profile fetches. Zero means 4.
	Workers int
}

// Result summarizes one sync run.
type Result struct {
	Distributors int64
	Warehouses   int64
	DemandCells  int64
}

// Run fetches the logistics snapshot and the demand grid for the region's
// bounding box concurrently, then writes both to the store.
func (s *Syncer) Run(ctx context.Context, region string, bbox model.BBox) (*Result, error) {
	log := zap.L().With(zap.String("region", region))

	var (
		logistics *portal.LogisticsResponse
		cells     []model.DemandCell
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logistics, err = s.Client.Logistics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cells, err = s.Client.DemandGrid(gctx, bbox)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "portalsync: fetch portal data")
	}

	distributors := make([]model.Distributor, 0, len(logistics.Distributors))
	for _, rec := range logistics.Distributors {
		distributors = append(distributors, rec.Distributor())
	}
	warehouses := make([]model.Warehouse, 0, len(logistics.Warehouses))
	for _, rec := range logistics.Warehouses {
		warehouses = append(warehouses, model.Warehouse{
			Name:     rec.Name,
			Location: model.GeoPoint{Lat: rec.Lat, Lng: rec.Lng},
		})
	}

	res := &Result{}
	var err error
	if res.Distributors, err = s.Store.UpsertDistributors(ctx, distributors); err != nil {
		return nil, eris.Wrap(err, "portalsync: upsert distributors")
	}
	if res.Warehouses, err = s.Store.UpsertWarehouses(ctx, warehouses); err != nil {
		return nil, eris.Wrap(err, "portalsync: upsert warehouses")
	}
	if res.DemandCells, err = s.Store.ReplaceDemandCells(ctx, region, cells); err != nil {
		return nil, eris.Wrap(err, "portalsync: replace demand cells")
	}

	log.Info("sync complete",
		zap.Int64("distributors", res.Distributors),
		zap.Int64("warehouses", res.Warehouses),
		zap.Int64("demand_cells", res.DemandCells),
	)
	return res, nil
}

// SiteProfiles fetches road attributes for each point with bounded
// concurrency. The result slice is ordered like the input; entries are nil
// only if the whole call errors.
func (s *Syncer) SiteProfiles(ctx context.Context, points []model.GeoPoint) ([]*portal.SiteProfile, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = 4
	}

	profiles := make([]*portal.SiteProfile, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range points {
		g.Go(func() error {
			profile, err := s.Client.SiteProfile(gctx, p)
			if err != nil {
				return eris.Wrapf(err, "portalsync: site profile at (%.4f, %.4f)", p.Lat, p.Lng)
			}
			profiles[i] = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}
