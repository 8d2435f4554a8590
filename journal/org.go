package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRoundtripOrg renders a round-trip as an Org-mode entry. Facts go
// in the PROPERTIES drawer; Thesis and Review are left for the trader.
func FormatRoundtripOrg(r RoundtripRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Roundtrip: %s %s (%s)\n", r.Instrument, r.Side, shortID(r.RoundtripID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", r.RoundtripID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", r.Instrument)
	fmt.Fprintf(&b, ":SIDE: %s\n", r.Side)
	fmt.Fprintf(&b, ":QUANTITY: %g\n", r.Quantity)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", r.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %.5f\n", r.ExitPrice)
	fmt.Fprintf(&b, ":ENTRY_TIME: %s\n", r.EntryTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":EXIT_TIME: %s\n", r.ExitTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":DURATION: %s\n", r.ExitTime.Sub(r.EntryTime))
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", r.Commission)
	fmt.Fprintf(&b, ":GROSS_PNL: %.2f\n", r.GrossPnL)
	fmt.Fprintf(&b, ":NET_PNL: %.2f\n", r.NetPnL)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatRoundtripsOrg renders multiple round-trips separated by blank lines.
func FormatRoundtripsOrg(rts []RoundtripRecord) string {
	var b strings.Builder
	for i, r := range rts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRoundtripOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
