package feed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/woozymasta/sheetmap/internal/geo"
)

// UnnamedPoint is the name given to rows without one.
const UnnamedPoint = "Unnamed"

// Column aliases accepted for point rows.
var (
	latColumns         = []string{"lat", "latitude"}
	lonColumns         = []string{"lon", "lng", "long", "longitude"}
	descriptionColumns = []string{"description", "info"}
)

var errMissingCoordinates = errors.New("missing coordinates")

// BuildPoints converts point rows into Point features with name, description and color properties.
// Rows without valid coordinates are skipped and returned as *RowError.
func BuildPoints(rows []Row, defaultColor string) (geo.FeatureCollection, []error) {
	fc := geo.NewFeatureCollection(len(rows))
	var errs []error

	for _, row := range rows {
		c, err := rowCoordinate(row)
		if err != nil {
			errs = append(errs, &RowError{Line: row.Line, Err: err})
			continue
		}

		name := row.Get("name")
		if name == "" {
			name = UnnamedPoint
		}
		color := row.Get("color")
		if color == "" {
			color = defaultColor
		}

		fc.Features = append(fc.Features, geo.NewPoint(c, map[string]any{
			"name":        name,
			"description": row.Get(descriptionColumns...),
			"color":       color,
		}))
	}

	return fc, errs
}

func rowCoordinate(row Row) (geo.Coordinate, error) {
	latRaw, lonRaw := row.Get(latColumns...), row.Get(lonColumns...)
	if latRaw == "" || lonRaw == "" {
		return geo.Coordinate{}, errMissingCoordinates
	}

	lat, err := parseDegrees(latRaw)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseDegrees(lonRaw)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("coordinate %v,%v out of range", lat, lon)
	}

	return c, nil
}

// parseDegrees accepts a decimal comma as exported by spreadsheets in many locales.
func parseDegrees(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}

	return v, err
}
