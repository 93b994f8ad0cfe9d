package main

import (
	"bufio"
	"iter"
	"os"
	"strings"

	"github.com/Sternrassler/httpbatch/pkg/batch"
	"github.com/Sternrassler/httpbatch/pkg/gis"
	"github.com/spf13/cobra"
)

func newGeocodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode [FILE]",
		Short: "Geocode one address per line (stdin when FILE is omitted)",
		Long: "Geocode one address per line. Output lines are\n" +
			"  idx;address;lat;lon   on success\n" +
			"  idx;address;not_found when the provider has no match\n" +
			"  idx;address;failed:REASON when the request was dropped",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateGIS(); err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			out := &geocodeOutput{w: newLineWriter(cmd.OutOrStdout())}
			scanner := bufio.NewScanner(in)

			err := runJob(cmd.Context(), a, job[string]{
				name:     "geocode",
				factory:  gis.NewGeocodingFactory(a.cfg.GIS.APIURL, a.cfg.GIS.APIKey, a.cfg.GIS.Provider),
				adapter:  &gis.GeocodingAdapter{Handler: out},
				failures: out,
				items:    addressLines(scanner),
			})
			if err != nil {
				return err
			}
			return scanner.Err()
		},
	}
}

// addressLines yields the non-blank lines of scanner. The input is read lazily,
// so the number of addresses is unknown up front.
func addressLines(scanner *bufio.Scanner) iter.Seq[string] {
	return func(yield func(string) bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// geocodeOutput prints geocoding outcomes as semicolon separated lines.
type geocodeOutput struct {
	w *lineWriter
}

func (o *geocodeOutput) OnSuccess(index int, address string, point gis.GeoPoint) {
	o.w.printf("%d;%s;%g;%g", index, address, point.Lat, point.Lon)
}

func (o *geocodeOutput) OnFail(index int, address string) {
	o.w.printf("%d;%s;not_found", index, address)
}

func (o *geocodeOutput) OnFailure(f batch.Failure[string]) {
	o.w.printf("%d;%s;failed:%s", f.Index, f.Item, f.Reason)
}
