package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jwalton/go-supportscolor"

	"github.com/vertti/terminwatch/pkg/check"
)

var (
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	dim    = "\033[2m"
	reset  = "\033[0m"
)

func init() {
	if !supportscolor.Stdout().SupportsColor {
		green, yellow, red, dim, reset = "", "", "", "", ""
	}
}

// Out is where results are printed.
var Out io.Writer = os.Stdout

// PrintResult outputs a check result with a colored outcome header.
//
//	[OK] browser: chrome                 a diagnostic check passed
//	[NONE] appointments: https://...     no appointments available
//	[FOUND] appointments: https://...    appointments might be available
//	[FAIL:TIMEOUT] appointments: ...     the check could not classify the page
func PrintResult(r check.Result) {
	var header string
	switch r.Outcome {
	case check.OutcomeOK:
		header = "[OK]"
		fmt.Fprintf(Out, "%s%s%s %s\n", green, header, reset, r.Name)
	case check.OutcomeNoAppointments:
		header = "[NONE]"
		fmt.Fprintf(Out, "%s%s%s %s\n", yellow, header, reset, r.Name)
	case check.OutcomeAppointments:
		header = "[FOUND]"
		fmt.Fprintf(Out, "%s%s%s %s\n", green, header, reset, r.Name)
	default:
		header = "[FAIL:" + string(r.Failure) + "]"
		fmt.Fprintf(Out, "%s%s%s %s\n", red, header, reset, r.Name)
	}

	indent := strings.Repeat(" ", len(header)+1)
	for _, d := range r.Details {
		fmt.Fprintf(Out, "%s%s\n", indent, formatLabel(d))
	}
}

// formatLabel dims the "label:" prefix of a detail line.
func formatLabel(detail string) string {
	idx := strings.Index(detail, ": ")
	if idx <= 0 || dim == "" {
		return detail
	}
	return dim + detail[:idx+1] + reset + detail[idx+1:]
}
