// Package gallery collects the images of one facility from every source and
// prepares user photos for upload.
package gallery

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds/wheelmap"
)

type PlaceImages interface {
	Images(ctx context.Context, originalID string) ([]string, error)
}

type NodePhotos interface {
	NodePhotos(ctx context.Context, nodeID string) ([]string, error)
}

type BackendImages interface {
	Images(ctx context.Context, id model.ID) ([]string, error)
}

type Gallery struct {
	places  PlaceImages
	nodes   NodePhotos
	backend BackendImages
}

func New(places PlaceImages, nodes NodePhotos, backend BackendImages) *Gallery {
	return &Gallery{places: places, nodes: nodes, backend: backend}
}

// Images returns accessibility feed images, then mapping-service photos, then
// backend uploads. The first two sources are only asked for facilities that
// originate from the mapping service.
func (g *Gallery) Images(ctx context.Context, id model.ID) ([]string, error) {
	var fromPlaces, fromNodes, fromBackend []string
	mapped := id.SourceID == wheelmap.SourceID

	eg, ctx := errgroup.WithContext(ctx)
	if mapped {
		eg.Go(func() (err error) {
			fromPlaces, err = g.places.Images(ctx, id.OriginalID)
			return err
		})
		eg.Go(func() (err error) {
			fromNodes, err = g.nodes.NodePhotos(ctx, id.OriginalID)
			return err
		})
	}
	eg.Go(func() (err error) {
		fromBackend, err = g.backend.Images(ctx, id)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(fromPlaces)+len(fromNodes)+len(fromBackend))
	out = append(out, fromPlaces...)
	out = append(out, fromNodes...)
	return append(out, fromBackend...), nil
}
