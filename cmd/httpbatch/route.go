package main

import (
	"fmt"
	"os"

	"github.com/Sternrassler/httpbatch/pkg/batch"
	"github.com/Sternrassler/httpbatch/pkg/gis"
	"github.com/spf13/cobra"
)

func newRouteCmd(a *app) *cobra.Command {
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "route LOCATIONS_CSV",
		Short: "Compute distance and duration between every pair of locations",
		Long: "Reads id;lat;lon rows and routes every ordered pair of locations.\n" +
			"Output columns: idx;from;to;distance_in_meters;duration_in_seconds",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateGIS(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			locations, err := gis.ReadLocations(f)
			f.Close()
			if err != nil {
				return err
			}
			if len(locations) == 0 {
				return fmt.Errorf("%s: no locations", args[0])
			}

			out := &routeOutput{w: newLineWriter(cmd.OutOrStdout()), locations: locations}
			if !noHeader {
				out.w.printf("idx;from;to;distance_in_meters;duration_in_seconds")
			}

			a.logger.Info().Int("locations", len(locations)).Msg("Routing all location pairs")

			return runJob(cmd.Context(), a, job[gis.Route]{
				name:     "route",
				factory:  gis.NewRoutingFactory(a.cfg.GIS.APIURL, a.cfg.GIS.APIKey, a.cfg.GIS.Provider, a.cfg.GIS.Profile),
				adapter:  &gis.RoutingAdapter{Handler: out},
				failures: out,
				items:    gis.AllPairs(gis.Points(locations)),
				n:        len(locations) * len(locations),
			})
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the header line")

	return cmd
}

// routeOutput prints routing outcomes using the location IDs of the input file.
type routeOutput struct {
	w         *lineWriter
	locations []gis.Location
}

func (o *routeOutput) ids(index int) (string, string) {
	from, to := gis.PairIndex(index, len(o.locations))
	return o.locations[from].ID, o.locations[to].ID
}

func (o *routeOutput) OnSuccess(index int, route gis.Route, distance, duration float64) {
	from, to := o.ids(index)
	o.w.printf("%d;%s;%s;%g;%g", index, from, to, distance, duration)
}

func (o *routeOutput) OnFail(index int, route gis.Route) {
	from, to := o.ids(index)
	o.w.printf("%d;%s;%s;failed", index, from, to)
}

func (o *routeOutput) OnFailure(f batch.Failure[gis.Route]) {
	from, to := o.ids(f.Index)
	o.w.printf("%d;%s;%s;failed:%s", f.Index, from, to, f.Reason)
}
