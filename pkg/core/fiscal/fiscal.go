// Package fiscal computes Aegis's fiscal calendar: fiscal years run
// November 1 through October 31, split into four 3-month quarters starting
// in November. Ported arithmetic-for-arithmetic from the original source's
// fiscal.py (_get_quarter_dates, _get_fiscal_year_and_quarter,
// _build_quarters_info, get_fiscal_statement) so the quarter boundaries and
// the rendered context block match byte for byte in substance.
package fiscal

import (
	"fmt"
	"strings"
	"time"
)

const fiscalStartMonth = time.November

var quarterNames = [4]string{"Q1 (Nov-Jan)", "Q2 (Feb-Apr)", "Q3 (May-Jul)", "Q4 (Aug-Oct)"}

// Current returns the fiscal year and quarter (1-4) containing t.
func Current(t time.Time) (fiscalYear, quarter int) {
	if t.Month() >= fiscalStartMonth {
		fiscalYear = t.Year() + 1
		monthsElapsed := int(t.Month() - fiscalStartMonth)
		quarter = monthsElapsed/3 + 1
		return fiscalYear, quarter
	}
	fiscalYear = t.Year()
	monthsElapsed := int(12-fiscalStartMonth) + int(t.Month())
	quarter = monthsElapsed/3 + 1
	return fiscalYear, quarter
}

// QuarterDates returns the inclusive [start, end] range for fiscalYear/quarter.
// Quarter 1 of FYn starts November 1 of year n-1.
func QuarterDates(fiscalYear, quarter int) (start, end time.Time) {
	quarterStartMonth := int(fiscalStartMonth) + (quarter-1)*3
	quarterYear := fiscalYear - 1
	if quarterStartMonth > 12 {
		quarterStartMonth -= 12
		quarterYear = fiscalYear
	}
	start = time.Date(quarterYear, time.Month(quarterStartMonth), 1, 0, 0, 0, 0, time.UTC)

	quarterEndMonth := quarterStartMonth + 2
	quarterEndYear := quarterYear
	if quarterEndMonth > 12 {
		quarterEndMonth -= 12
		quarterEndYear = quarterYear + 1
	}
	if quarterEndMonth == 12 {
		end = time.Date(quarterEndYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	} else {
		nextMonth := time.Date(quarterEndYear, time.Month(quarterEndMonth+1), 1, 0, 0, 0, 0, time.UTC)
		end = nextMonth.AddDate(0, 0, -1)
	}
	return start, end
}

func quartersInfo(fiscalYear int) []string {
	lines := make([]string, 0, 4)
	for q := 1; q <= 4; q++ {
		start, end := QuarterDates(fiscalYear, q)
		lines = append(lines, fmt.Sprintf("  - %s: %s to %s",
			quarterNames[q-1], start.Format("Jan 02, 2006"), end.Format("Jan 02, 2006")))
	}
	return lines
}

// Context renders the "Fiscal Period Context" block injected into the
// global prompt layer (spec §4.4, §8), matching get_fiscal_statement's
// structure and wording.
func Context(now time.Time) string {
	fiscalYear, quarter := Current(now)
	fyStart := time.Date(fiscalYear-1, time.November, 1, 0, 0, 0, 0, time.UTC)
	quarterStart, quarterEnd := QuarterDates(fiscalYear, quarter)

	daysRemaining := int(quarterEnd.Sub(now).Hours()/24) + 1
	daysElapsed := int(now.Sub(quarterStart).Hours()/24) + 1

	var b strings.Builder
	fmt.Fprintf(&b, "Fiscal Period Context:\n\n")
	fmt.Fprintf(&b, "Today's Date: %s\n", now.Format("January 02, 2006"))
	fmt.Fprintf(&b, "Current Fiscal Year: FY%d (Nov 1, %d - Oct 31, %d)\n", fiscalYear, fiscalYear-1, fiscalYear)
	fmt.Fprintf(&b, "Current Fiscal Quarter: FY%d Q%d\n\n", fiscalYear, quarter)
	fmt.Fprintf(&b, "Current Quarter:\n")
	fmt.Fprintf(&b, "  - Period: %s to %s\n", quarterStart.Format("January 02, 2006"), quarterEnd.Format("January 02, 2006"))
	fmt.Fprintf(&b, "  - Days Remaining: %d\n", daysRemaining)
	fmt.Fprintf(&b, "  - Days Elapsed: %d\n\n", daysElapsed)
	fmt.Fprintf(&b, "Fiscal Year Quarters:\n%s\n\n", strings.Join(quartersInfo(fiscalYear), "\n"))
	fmt.Fprintf(&b, "Date Reference Guidelines:\n")
	fmt.Fprintf(&b, "  - Year-to-date (YTD): From %s to today\n", fyStart.Format("January 02, 2006"))
	fmt.Fprintf(&b, "  - Quarter-to-date (QTD): From %s to today\n", quarterStart.Format("January 02, 2006"))
	fmt.Fprintf(&b, "  - Prior year comparison: FY%d (Nov 1, %d - Oct 31, %d)\n", fiscalYear-1, fiscalYear-2, fiscalYear-1)
	fmt.Fprintf(&b, "  - Use current fiscal period unless specifically requested otherwise")

	return b.String()
}
