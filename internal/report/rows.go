package report

import (
	"time"

	"github.com/cylvision/dockwatch/internal/domain/direction"
	"github.com/cylvision/dockwatch/internal/domain/model"
)

// Row is the flat export shape consumed by external formatters
// (CSV, spreadsheet, PDF renderers). Field order is part of the
// contract: timestamp, platform, zone, direction, quantity.
type Row struct {
	Timestamp time.Time `json:"timestamp"`
	Platform  string    `json:"platform"`
	Zone      string    `json:"zone"`
	Direction string    `json:"direction"`
	Quantity  int       `json:"quantity"`
}

// buildRow normalizes one event into the export shape. Direction is
// passed through normalized when recognized, raw otherwise.
func buildRow(e model.CrossingEvent) Row {
	return Row{
		Timestamp: e.Timestamp,
		Platform:  e.Platform,
		Zone:      e.Zone,
		Direction: direction.Normalize(e.Direction),
		Quantity:  e.Qty,
	}
}

// BuildRows converts filtered events to export rows, preserving order.
func BuildRows(events []model.CrossingEvent) []Row {
	rows := make([]Row, len(events))
	for i, e := range events {
		rows[i] = buildRow(e)
	}
	return rows
}
