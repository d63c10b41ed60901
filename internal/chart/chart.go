// Package chart builds Vega-Lite v5 specifications for the results page.
// Rendering happens in the browser; these are plain JSON-ready values.
package chart

import (
	"github.com/stepsurvey/steps-survey/internal/analysis"
	"github.com/stepsurvey/steps-survey/internal/domain"
)

const schemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Spec is a Vega-Lite specification.
type Spec map[string]any

// Set holds the charts of one results view. Nil members are omitted.
type Set struct {
	Reference    Spec `json:"reference,omitempty"`
	TimeSeries   Spec `json:"timeSeries,omitempty"`
	LowExercise  Spec `json:"lowExercise,omitempty"`
	HighExercise Spec `json:"highExercise,omitempty"`
}

// CategoryColors fixes slice colors so Low/Medium/High look the same in both pies.
var CategoryColors = map[domain.EnergyCategory]string{
	domain.EnergyLow:    "blue",
	domain.EnergyMedium: "orange",
	domain.EnergyHigh:   "green",
}

const fallbackColor = "grey"

func colorFor(c domain.EnergyCategory) string {
	if col, ok := CategoryColors[c]; ok {
		return col
	}
	return fallbackColor
}

// Reference is the bar chart of study effect sizes, nil when ds is empty.
func Reference(ds domain.ReferenceDataset) Spec {
	if ds.IsEmpty() {
		return nil
	}
	values := make([]map[string]any, 0, len(ds.Effects))
	for _, e := range ds.Effects {
		values = append(values, map[string]any{
			"Cardio Intensity":               e.Intensity,
			"Energy Improvement Effect Size": e.EffectSize,
		})
	}
	order := make([]string, 0, len(ds.Effects))
	for _, e := range ds.Effects {
		order = append(order, e.Intensity)
	}
	return Spec{
		"$schema": schemaURL,
		"title":   ds.ChartTitle,
		"width":   "container",
		"mark":    "bar",
		"encoding": map[string]any{
			"x": map[string]any{
				"field": "Cardio Intensity",
				"type":  "nominal",
				"sort":  order,
				"axis":  map[string]any{"labelAngle": 0},
			},
			"y": map[string]any{
				"field": "Energy Improvement Effect Size",
				"type":  "quantitative",
			},
		},
		"data": map[string]any{"values": values},
	}
}

// TimeSeries plots steps and energy on independent y axes over a
// chronologically sorted table. Nil when series is empty.
func TimeSeries(series domain.EntryTable) Spec {
	if len(series) == 0 {
		return nil
	}
	values := make([]map[string]any, 0, len(series))
	for _, e := range series {
		values = append(values, map[string]any{
			"date":   e.DateString(),
			"steps":  e.Steps,
			"energy": e.Energy,
		})
	}
	x := map[string]any{
		"field": "date",
		"type":  "temporal",
		"title": "Date",
		"axis":  map[string]any{"format": "%m-%d"},
	}
	return Spec{
		"$schema": schemaURL,
		"title":   "Step Count and Energy Level Data",
		"width":   "container",
		"data":    map[string]any{"values": values},
		"layer": []any{
			map[string]any{
				"mark": map[string]any{"type": "line", "color": "blue", "strokeWidth": 2},
				"encoding": map[string]any{
					"x": x,
					"y": map[string]any{
						"field": "steps", "type": "quantitative", "title": "Steps",
						"axis": map[string]any{"titleColor": "blue"},
					},
				},
			},
			map[string]any{
				"mark": map[string]any{"type": "line", "color": "green", "strokeWidth": 2},
				"encoding": map[string]any{
					"x": x,
					"y": map[string]any{
						"field": "energy", "type": "quantitative", "title": "Energy Level (1–10)",
						"scale": map[string]any{"domain": []int{0, 10}},
						"axis":  map[string]any{"titleColor": "green"},
					},
				},
			},
		},
		"resolve": map[string]any{"scale": map[string]any{"y": "independent"}},
	}
}

// EnergyPie is a pie of category counts, nil when there are none.
func EnergyPie(title string, counts []analysis.CategoryCount) Spec {
	if len(counts) == 0 {
		return nil
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	values := make([]map[string]any, 0, len(counts))
	domainNames := make([]string, 0, len(counts))
	colors := make([]string, 0, len(counts))
	for _, c := range counts {
		values = append(values, map[string]any{
			"category": string(c.Category),
			"count":    c.Count,
			"share":    float64(c.Count) / float64(total),
		})
		domainNames = append(domainNames, string(c.Category))
		colors = append(colors, colorFor(c.Category))
	}
	return Spec{
		"$schema": schemaURL,
		"title":   title,
		"data":    map[string]any{"values": values},
		"mark":    map[string]any{"type": "arc", "tooltip": true},
		"encoding": map[string]any{
			"theta": map[string]any{"field": "count", "type": "quantitative", "stack": true},
			"color": map[string]any{
				"field": "category",
				"type":  "nominal",
				"scale": map[string]any{"domain": domainNames, "range": colors},
			},
			"tooltip": []any{
				map[string]any{"field": "category", "type": "nominal"},
				map[string]any{"field": "share", "type": "quantitative", "format": ".1%"},
			},
		},
	}
}
