package feed

import (
	"errors"
	"strings"

	"github.com/woozymasta/sheetmap/internal/geo"
)

var errMissingGeometry = errors.New("missing geometry")

// BuildGeometries converts rows marked include=y into features by normalizing the
// geometry column. Every produced feature gets the row name and description as its
// only properties, replacing whatever the geometry column carried.
func BuildGeometries(rows []Row) (geo.FeatureCollection, []error) {
	fc := geo.NewFeatureCollection(len(rows))
	var errs []error

	for _, row := range rows {
		if !strings.EqualFold(strings.TrimSpace(row.Get("include")), "y") {
			continue
		}

		raw := row.Get("geometry")
		if strings.TrimSpace(raw) == "" {
			errs = append(errs, &RowError{Line: row.Line, Err: errMissingGeometry})
			continue
		}

		features, err := geo.Normalize([]byte(raw))
		if err != nil {
			errs = append(errs, &RowError{Line: row.Line, Err: err})
			continue
		}

		for _, f := range features {
			f.Properties = map[string]any{
				"name":        row.Get("name"),
				"description": row.Get("description"),
			}
			fc.Features = append(fc.Features, f)
		}
	}

	return fc, errs
}
