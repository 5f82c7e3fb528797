package trainer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"docclassifier/db"
	"docclassifier/ml"
)

// RenderReport prints per-class precision/recall/F1/support followed by
// accuracy and the macro and weighted averages.
func RenderReport(w io.Writer, report *ml.ClassificationReport) error {
	if report == nil {
		return ml.ErrEmptyInput
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "precision", "recall", "f1-score", "support"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, m := range report.Classes {
		table.Append(metricRow(m))
	}
	table.Append([]string{"", "", "", "", ""})
	table.Append([]string{"accuracy", "", "", f2(report.Accuracy), strconv.Itoa(report.Total)})
	table.Append(metricRow(report.MacroAvg))
	table.Append(metricRow(report.WeightedAvg))
	table.Render()
	return nil
}

func metricRow(m ml.ClassMetrics) []string {
	return []string{m.Label, f2(m.Precision), f2(m.Recall), f2(m.F1), strconv.Itoa(m.Support)}
}

func f2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// RenderHistory prints recorded training runs.
func RenderHistory(w io.Writer, logs []db.TrainingLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No training runs recorded.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run ID", "Trained At", "Model", "Accuracy", "Macro F1", "Train", "Test", "Classes"})
	table.SetBorder(true)
	table.SetRowLine(true)
	for _, l := range logs {
		table.Append([]string{
			l.RunID,
			l.TrainedAt.Format(time.RFC3339),
			l.ModelName,
			f2(l.Accuracy),
			f2(l.F1),
			strconv.Itoa(l.TrainSize),
			strconv.Itoa(l.TestSize),
			strconv.Itoa(l.ClassCount),
		})
	}
	table.Render()
}
