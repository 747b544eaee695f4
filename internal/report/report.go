// Package report renders completed-customer rows and queue metrics as CSV.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/jpalmerr/queueboard/internal/engine"
	"github.com/pkg/errors"
)

// File names offered to browsers for the two downloads.
const (
	CustomersFilename = "customer_entries.csv"
	MetricsFilename   = "queue_statistics.csv"
)

var customerHeader = []string{
	"Customer ID",
	"Arrival Time (min)",
	"Waiting Time (min)",
	"Service Time (min)",
	"Total Time (min)",
}

// WriteCustomers writes one row per customer with every time converted
// from seconds to minutes, 2 decimals.
func WriteCustomers(w io.Writer, rows []engine.CustomerSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(customerHeader); err != nil {
		return errors.Wrap(err, "write customer header")
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			minutes(r.ArrivalTime),
			minutes(r.WaitingTime),
			minutes(r.ServiceTime),
			minutes(r.TotalTime),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write customer %s", r.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush customers")
}

// WriteMetrics writes the metrics table as Metric,Value rows.
func WriteMetrics(w io.Writer, table []engine.Metric) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return errors.Wrap(err, "write metrics header")
	}
	for _, m := range table {
		if err := cw.Write([]string{m.Name, strconv.FormatFloat(m.Value, 'f', -1, 64)}); err != nil {
			return errors.Wrapf(err, "write metric %q", m.Name)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush metrics")
}

func minutes(seconds int64) string {
	return strconv.FormatFloat(float64(seconds)/60, 'f', 2, 64)
}
