package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/httpclient"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds/accessibility"
	"github.com/tonari-app/tonari/internal/feeds/backend"
	"github.com/tonari-app/tonari/internal/merge"
)

var (
	includeWithout bool
	related        bool
)

func init() {
	RootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&includeWithout, "include-without-accessibility", false, "keep places without accessibility data")
	searchCmd.Flags().BoolVar(&related, "related", false, "include related places (debugging)")
}

var searchCmd = &cobra.Command{
	Use:   "search <lat> <lon>",
	Short: "Run a radius search against the live feeds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0], args[1])
		if err != nil {
			return err
		}
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		hc := httpclient.NewOutbound(cfg.UpstreamTimeout)
		s := merge.NewSearcher(
			accessibility.New(cfg.AccessibilityCloudURL, cfg.AccessibilityCloudToken, hc, log),
			backend.New(cfg.BackendURL, hc, log),
			log,
		)
		fs, err := s.Search(cmd.Context(), pos, merge.Options{
			IncludePlacesWithoutAccessibility: includeWithout,
			IncludeRelated:                    related,
		})
		if err != nil {
			return err
		}
		if jsonfmt {
			return writeJSON(os.Stdout, fs)
		}
		printFacilities(os.Stdout, fs)
		return nil
	},
}

func parsePosition(lat, lon string) (model.Position, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("lat: %w", err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("lon: %w", err)
	}
	p := model.Position{Lat: la, Lon: lo}
	if !p.Valid() {
		return model.Position{}, fmt.Errorf("position %s out of range", p)
	}
	return p, nil
}

func printFacilities(w io.Writer, fs []model.Facility) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDISTANCE\tNAME\tID\tATTRIBUTES")
	for i, f := range fs {
		var labels []string
		for _, b := range attributes.Summary(f.Attributes, 0) {
			labels = append(labels, b.Label)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i, formatDistance(f.Features.Distance), f.Features.Name,
			f.Features.ID.String(), strings.Join(labels, ", "))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%s facilities within %s\n",
		humanize.Comma(int64(len(fs))), formatDistance(merge.Radius))
}

func formatDistance(m float64) string {
	return humanize.SIWithDigits(m, 1, "m")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
