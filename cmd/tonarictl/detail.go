package main

import (
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/httpclient"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds/accessibility"
	"github.com/tonari-app/tonari/internal/feeds/backend"
	"github.com/tonari-app/tonari/internal/feeds/geocode"
	"github.com/tonari-app/tonari/internal/feeds/wheelmap"
	"github.com/tonari-app/tonari/internal/gallery"
	"github.com/tonari-app/tonari/internal/merge"
	"github.com/tonari-app/tonari/internal/session"
)

func init() {
	RootCmd.AddCommand(detailCmd)
}

var detailCmd = &cobra.Command{
	Use:   "detail <lat> <lon> <sourceId> <originalId>",
	Short: "Search around a position and show one facility with images, comments and address",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0], args[1])
		if err != nil {
			return err
		}
		id := model.ID{SourceID: args[2], OriginalID: args[3]}

		cfg, log, err := setup()
		if err != nil {
			return err
		}
		langs, err := geocode.ParseLanguages(cfg.GeocoderLanguages)
		if err != nil {
			return err
		}
		hc := httpclient.NewOutbound(cfg.UpstreamTimeout)
		places := accessibility.New(cfg.AccessibilityCloudURL, cfg.AccessibilityCloudToken, hc, log)
		be := backend.New(cfg.BackendURL, hc, log)
		s := session.New("tonarictl", session.Deps{
			Searcher: merge.NewSearcher(places, be, log),
			Backend:  be,
			Images:   gallery.New(places, wheelmap.New(cfg.WheelmapURL, cfg.WheelmapToken, hc, log), be),
			Geocoder: geocode.New(cfg.GeocoderURL, cfg.MapquestToken, langs, hc, log),
			Logger:   log,
		})

		if _, err := s.Open(cmd.Context(), pos, &id, true); err != nil {
			return err
		}
		d, err := s.Detail(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		if jsonfmt {
			return writeJSON(os.Stdout, d)
		}
		printDetail(os.Stdout, d)
		return nil
	},
}

func printDetail(w io.Writer, d session.Detail) {
	f := d.Facility
	fmt.Fprintf(w, "%s (%s away, result #%d)\n", f.Features.Name, formatDistance(f.Features.Distance), d.Index)
	if d.Address != nil {
		fmt.Fprintf(w, "  address: %s\n", *d.Address)
	}
	for _, b := range attributes.Summary(f.Attributes, 0) {
		fmt.Fprintf(w, "  - %s\n", b.Label)
	}
	fmt.Fprintf(w, "  %s images\n", humanize.Comma(int64(len(d.Images))))
	for _, c := range d.Comments {
		fmt.Fprintf(w, "  %s: %s\n", humanize.Time(c.Timestamp), c.Content)
	}
	for _, p := range d.Pending {
		fmt.Fprintf(w, "  (%s unavailable)\n", p)
	}
}
