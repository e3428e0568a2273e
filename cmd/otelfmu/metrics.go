package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// sampleKey is the gauge attribute that distinguishes samples of one
// variable.
const sampleKey = attribute.Key("simulation.time")

// printMetrics writes one row per metric and attribute set. Gauge samples of
// the same variable are folded into a single min/max row.
func printMetrics(w io.Writer, rm metricdata.ResourceMetrics) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tATTRIBUTES\tVALUE")

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			for _, row := range metricRows(m) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, row.attrs, row.value)
			}
		}
	}
	_ = tw.Flush()
}

type metricRow struct {
	attrs string
	value string
}

func metricRows(m metricdata.Metrics) []metricRow {
	var rows []metricRow
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			rows = append(rows, metricRow{encode(dp.Attributes), fmt.Sprintf("%d", dp.Value)})
		}
	case metricdata.Sum[float64]:
		for _, dp := range data.DataPoints {
			rows = append(rows, metricRow{encode(dp.Attributes), fmt.Sprintf("%g", dp.Value)})
		}
	case metricdata.Histogram[float64]:
		for _, dp := range data.DataPoints {
			rows = append(rows, metricRow{encode(dp.Attributes), fmt.Sprintf("count=%d sum=%g", dp.Count, dp.Sum)})
		}
	case metricdata.Gauge[float64]:
		rows = gaugeRows(data)
	default:
		rows = append(rows, metricRow{"", fmt.Sprintf("(%T)", m.Data)})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].attrs < rows[j].attrs })
	return rows
}

// gaugeRows folds gauge points that differ only by sample time.
func gaugeRows(g metricdata.Gauge[float64]) []metricRow {
	type span struct {
		n        int
		min, max float64
	}
	folded := make(map[string]*span)
	for _, dp := range g.DataPoints {
		set, _ := dp.Attributes.Filter(func(kv attribute.KeyValue) bool { return kv.Key != sampleKey })
		key := encode(set)
		s, ok := folded[key]
		if !ok {
			s = &span{min: math.Inf(1), max: math.Inf(-1)}
			folded[key] = s
		}
		s.n++
		s.min = math.Min(s.min, dp.Value)
		s.max = math.Max(s.max, dp.Value)
	}

	rows := make([]metricRow, 0, len(folded))
	for key, s := range folded {
		rows = append(rows, metricRow{key, fmt.Sprintf("samples=%d min=%g max=%g", s.n, s.min, s.max)})
	}
	return rows
}

func encode(set attribute.Set) string {
	if set.Len() == 0 {
		return "-"
	}
	return set.Encoded(attribute.DefaultEncoder())
}
