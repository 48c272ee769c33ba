// Package report renders engine output in the text protocol.
package report

import (
	"fmt"
	"io"
	"strings"

	"outcry/internal/common"
)

// TextReporter writes trades and snapshots as protocol lines.
type TextReporter struct {
	w io.Writer
}

func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// ReportTrade writes
// TRADE <restingId> <restingPrice> <qty> <incomingId> <incomingPrice> <qty>.
func (r *TextReporter) ReportTrade(trade common.Trade) error {
	_, err := fmt.Fprintln(r.w, trade.String())
	return err
}

// ReportSnapshot writes the SELL: section followed by the BUY: section. The
// whole snapshot goes out in one write so concurrent readers never see half
// of it.
func (r *TextReporter) ReportSnapshot(snap common.Snapshot) error {
	var sb strings.Builder
	sb.WriteString("SELL:\n")
	writeLevels(&sb, snap.Sell)
	sb.WriteString("BUY:\n")
	writeLevels(&sb, snap.Buy)

	_, err := io.WriteString(r.w, sb.String())
	return err
}

func writeLevels(sb *strings.Builder, levels []common.Level) {
	for _, level := range levels {
		if !level.Quantity.IsPositive() {
			continue
		}
		fmt.Fprintf(sb, "%d %s\n", level.Price, level.Quantity)
	}
}
