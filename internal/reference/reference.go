// Package reference holds the city density schema and its sample data. The
// CLI falls back to it when no pipeline file is given, and tests use it as a
// known-good fixture.
package reference

import (
	"fmt"

	"tablepipe/internal/compute"
	"tablepipe/internal/records"
	"tablepipe/internal/schema"
)

// Schema returns a fresh copy of the city density schema: five input
// columns, a maxDensity metric and relativeDensity computed from it, sorted
// by relativeDensity descending.
func Schema() *schema.Schema {
	return &schema.Schema{
		Name: "cities",
		Columns: []schema.ColumnSpec{
			{Name: "city", Type: schema.TypeString, Width: 18},
			{Name: "population", Type: schema.TypeNumber, Width: 10},
			{Name: "area", Type: schema.TypeNumber, Width: 8},
			{Name: "density", Type: schema.TypeNumber, Width: 8},
			{Name: "country", Type: schema.TypeString, Width: 18},
			{Name: "relativeDensity", Type: schema.TypeNumber, Width: 6, Calculate: relativeDensity},
		},
		Metrics: []schema.MetricSpec{
			{Name: "maxDensity", Type: schema.TypeNumber, From: "density", Aggregate: "max"},
		},
		SortBy: &schema.SortBy{Column: "relativeDensity", Order: "desc"},
	}
}

func relativeDensity(row records.Record, m schema.Metrics) (any, error) {
	density, _ := row.Float("density")
	maxDensity, ok := m["maxDensity"].(float64)
	if !ok {
		return nil, fmt.Errorf("maxDensity is %T, want number", m["maxDensity"])
	}
	return compute.RoundHalfUp(density * 100 / maxDensity), nil
}

// SampleData is ten of the world's largest cities. Data lines carry leading
// spaces, which normalization trims from string columns.
const SampleData = `city,population,area,density,country
  Shanghai,24256800,6340,3826,China
  Delhi,16787941,1484,11313,India
  Lagos,16060303,1171,13712,Nigeria
  Istanbul,14160467,5461,2593,Turkey
  Tokyo,13513734,2191,6168,Japan
  Sao Paulo,12038175,1521,7914,Brazil
  Mexico City,8874724,1486,5974,Mexico
  London,8673713,1572,5431,United Kingdom
  New York City,8537673,784,10892,United States
  Bangkok,8280925,1569,5279,Thailand`
