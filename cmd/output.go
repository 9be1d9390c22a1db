package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/fillcast/fillcast/forecast"
	"github.com/fillcast/fillcast/forecast/capacity"
)

const dateLayout = "2006-01-02"

// writeForecastReport renders the forecast comparison, bottlenecks, and
// recommendations as human-readable tables.
func writeForecastReport(w io.Writer, reqID string, result *capacity.CapacityAwareResult, useColors bool) error {
	if _, err := fmt.Fprintf(w, "Fill forecast for %s\n\n", reqID); err != nil {
		return err
	}

	if err := writeForecastTable(w, result); err != nil {
		return err
	}

	var red, yellow func(...any) string
	if useColors {
		red = color.New(color.FgRed).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	} else {
		plain := fmt.Sprint
		red, yellow = plain, plain
	}

	if result.Constrained {
		delta := fmt.Sprintf("+%d days at p50", result.P50DeltaDays)
		if _, err := fmt.Fprintf(w, "\nCapacity-constrained: %s\n\n", red(delta)); err != nil {
			return err
		}
		if err := writeBottleneckTable(w, result.Bottlenecks); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "\nNot capacity-constrained.\n"); err != nil {
			return err
		}
	}

	if len(result.Reasons) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, reason := range result.Reasons {
			if _, err := fmt.Fprintf(w, "  - %s\n", yellow(reason)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeForecastTable(w io.Writer, result *capacity.CapacityAwareResult) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Forecast", "P10", "P50", "P90", "Hires", "Confidence"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		forecastRow("Pipeline-only", result.PipelineOnly),
		forecastRow("Capacity-aware", result.CapacityAware),
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func forecastRow(label string, r *forecast.ForecastResult) []string {
	if r == nil || r.Empty() {
		return []string{label, "-", "-", "-", "0", string(forecast.ConfidenceLow)}
	}
	return []string{
		label,
		fmt.Sprintf("%s (%dd)", r.P10Date.Format(dateLayout), r.P10Days),
		fmt.Sprintf("%s (%dd)", r.P50Date.Format(dateLayout), r.P50Days),
		fmt.Sprintf("%s (%dd)", r.P90Date.Format(dateLayout), r.P90Days),
		fmt.Sprintf("%d/%d", r.Successes, r.Iterations),
		string(r.Confidence),
	}
}

func writeBottleneckTable(w io.Writer, bottlenecks []capacity.Bottleneck) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Stage", "Owner", "Waiting", "Capacity/Week", "Delay (days)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(bottlenecks))
	for _, b := range bottlenecks {
		data = append(data, []string{
			string(b.Stage),
			string(b.Owner),
			fmt.Sprintf("%d", b.DemandPerWeek),
			fmt.Sprintf("%.1f", b.ThroughputPerWeek),
			fmt.Sprintf("%.0f", b.DelayDays),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
