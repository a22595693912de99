package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/gesture"
	"github.com/tonari-app/tonari/internal/mapsurl"
	"github.com/tonari-app/tonari/internal/route"
)

var (
	userAgent string
	name      string
)

func init() {
	RootCmd.AddCommand(attributesCmd, routeCmd, mapsCmd, replayCmd)
	mapsCmd.Flags().StringVar(&userAgent, "user-agent", "", "client user agent")
	mapsCmd.Flags().StringVar(&name, "name", "", "facility name")
}

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "List the attribute catalog",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if jsonfmt {
			return writeJSON(os.Stdout, attributes.Catalog())
		}
		for _, d := range attributes.Catalog() {
			kind := "enum"
			if d.Boolean {
				kind = "bool"
			}
			fmt.Printf("%-22s %-5s persisted=%t\n", d.Name, kind, d.Persisted)
		}
		return nil
	},
}

var routeCmd = &cobra.Command{
	Use:   "route <path>",
	Short: "Parse a client route and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		r, err := route.Parse(args[0])
		if err != nil {
			return err
		}
		if jsonfmt {
			return writeJSON(os.Stdout, map[string]any{"screen": r.Screen, "pos": r.Pos, "id": r.ID, "path": route.Build(r)})
		}
		fmt.Printf("screen: %s\n", r.Screen)
		if r.Screen != route.Startup && r.Screen != route.NowGPS && r.Screen != route.Add && r.Screen != route.Later {
			fmt.Printf("pos:    %s (valid=%t)\n", r.Pos, r.Pos.Valid())
		}
		if !r.ID.IsZero() {
			fmt.Printf("id:     %s\n", r.ID)
		}
		fmt.Printf("path:   %s\n", route.Build(r))
		return nil
	},
}

var mapsCmd = &cobra.Command{
	Use:   "maps <lat> <lon>",
	Short: "Print the navigation link a client would open",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0], args[1])
		if err != nil {
			return err
		}
		l := mapsurl.For(userAgent, pos, name)
		if jsonfmt {
			return writeJSON(os.Stdout, l)
		}
		fmt.Printf("%s\n%s\n", l.Caption, l.URL)
		return nil
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <recording.json>",
	Short: "Replay a recorded swipe gesture",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var rec gesture.Recording
		if err := json.Unmarshal(b, &rec); err != nil {
			return fmt.Errorf("decode recording: %w", err)
		}
		res, err := rec.Run()
		if err != nil {
			return err
		}
		if jsonfmt {
			return writeJSON(os.Stdout, res)
		}
		for i, o := range res.Outcomes {
			fmt.Printf("%3d %-9s index=%d changed=%t tap=%t\n", i, rec.Events[i].Type, o.Index, o.IndexChanged, o.Tap)
		}
		fmt.Printf("final index=%d state=%s\n", res.Index, res.State)
		return nil
	},
}
