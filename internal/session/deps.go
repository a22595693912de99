package session

import (
	"context"
	"log/slog"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/merge"
	"github.com/tonari-app/tonari/internal/visitevents"
)

// Backend is the subset of the backend feed sessions write through.
type Backend interface {
	Comments(ctx context.Context, id model.ID) ([]model.Comment, error)
	CreateFacility(ctx context.Context, name string, pos model.Position) error
	UpdateFacility(ctx context.Context, id model.ID, pos model.Position, payload map[string]any) error
	WillVisit(ctx context.Context, id model.ID, search model.Position) error
	FlagImage(ctx context.Context, id model.ID, imageID string) error
	AddComment(ctx context.Context, id model.ID, pos model.Position, content string) error
	UploadImage(ctx context.Context, id model.ID, pos model.Position, jpeg []byte) error
}

type Images interface {
	Images(ctx context.Context, id model.ID) ([]string, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, pos model.Position) (*string, error)
}

type VisitSink interface {
	Publish(ev visitevents.Event)
}

// ChangeSink hears about facilities written through a session.
type ChangeSink interface {
	FacilityChanged(ctx context.Context, op string, id model.ID, pos model.Position)
}

type Deps struct {
	Searcher merge.Interface
	Backend  Backend
	Images   Images
	Geocoder Geocoder
	// Visits is optional.
	Visits VisitSink
	// Changes is optional.
	Changes ChangeSink
	Logger  *slog.Logger

	// ResetSideCachesOnSearch clears images, comments and addresses whenever a
	// new position is searched. Off by default: caches survive across searches.
	ResetSideCachesOnSearch bool
}
