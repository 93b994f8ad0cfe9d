package gis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Location is one row of a locations file.
type Location struct {
	ID    string
	Point GeoPoint
}

// ReadLocations parses semicolon separated "id;lat;lon" rows. Blank lines are skipped.
func ReadLocations(r io.Reader) ([]Location, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var locations []Location
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return locations, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read locations: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: want id;lat;lon, got %d fields", line, len(record))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}

		locations = append(locations, Location{
			ID:    strings.TrimSpace(record[0]),
			Point: GeoPoint{Lat: lat, Lon: lon},
		})
	}
}

// Points returns the coordinates of locations in order.
func Points(locations []Location) []GeoPoint {
	points := make([]GeoPoint, len(locations))
	for i, l := range locations {
		points[i] = l.Point
	}
	return points
}
