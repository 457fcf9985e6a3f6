package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"companylens/pkg/contracts/domain"
)

// Placeholder is rendered for absent metric values and unavailable benchmarks.
const Placeholder = "N/A"

var printer = message.NewPrinter(language.English)

// FormatValue renders a value for display. Integral numbers get thousands
// separators and no fraction ("1,000"), other numbers exactly two decimals
// ("1,234.50"). Strings that parse as finite numbers follow the same rules;
// any other string, "nan" and "inf" included, is returned unchanged.
// FormatValue never fails.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case domain.Value:
		f, ok := x.Get()
		if !ok {
			return Placeholder
		}
		return formatFloat(f)
	case domain.BenchmarkValue:
		if !x.Available {
			return Placeholder
		}
		return formatFloat(x.Value)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return printer.Sprintf("%d", x)
	case int32:
		return printer.Sprintf("%d", x)
	case int64:
		return printer.Sprintf("%d", x)
	case uint:
		return printer.Sprintf("%d", x)
	case uint64:
		return printer.Sprintf("%d", x)
	case bool:
		return formatBool(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return x
		}
		return formatFloat(f)
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat formats a finite float with separators. NaN and infinities are
// passed to fmt unchanged.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	if f == math.Trunc(f) {
		if f == 0 {
			// normalise negative zero
			f = 0
		}
		return printer.Sprintf("%.0f", f)
	}
	return printer.Sprintf("%.2f", f)
}

// formatBool formats a boolean value
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
