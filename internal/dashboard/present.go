package dashboard

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

const (
	poundSign = "£"
	dash      = "—"
)

var printer = message.NewPrinter(language.BritishEnglish)

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// GBP formats whole pounds, as used for totals and budgets.
func GBP(v float64) string {
	return poundSign + printer.Sprint(number.Decimal(math.Round(finite(v)), number.MaxFractionDigits(0)))
}

// GBP2 formats pounds and pence, as used in ad-set cells.
func GBP2(v float64) string {
	return poundSign + printer.Sprint(number.Decimal(finite(v), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Ratio formats ROAS-style ratios with two decimals.
func Ratio(v float64) string { return fmt.Sprintf("%.2f", finite(v)) }

// CPP renders a cost per purchase or a dash when there were no purchases.
func CPP(cpp *float64, pence bool) string {
	if cpp == nil {
		return dash
	}
	if pence {
		return GBP2(*cpp)
	}
	return GBP(*cpp)
}

// TotalCPP is a dash when nothing was purchased.
func TotalCPP(t models.Totals) string {
	if t.Purchases == 0 {
		return dash
	}
	return GBP(t.CPP)
}

func FormatDate(t time.Time) string { return t.Format("2006-01-02") }

// ActionLabel is the toggle button caption for a row in status s.
func ActionLabel(s models.Status) string {
	if s == models.StatusPaused {
		return "Resume"
	}
	return "Pause"
}

// Reasons explains a row's recommendation for the detail panel.
func Reasons(r models.Row, breakEven float64) []string {
	if r.Kind != models.KindAdSet || r.AdSet == nil {
		return []string{"Campaign-level insights are not available; open its ad sets to evaluate spend."}
	}
	a := r.AdSet
	switch a.Recommendation {
	case models.RecTurnOff:
		return []string{
			fmt.Sprintf("ROAS %s is below break-even %s.", Ratio(a.ROAS), Ratio(breakEven)),
			fmt.Sprintf("Spend %s passed the minimum evaluation threshold.", GBP(a.Spend)),
			"Suggested action: pause this to protect blended ROAS.",
		}
	case models.RecScale:
		return []string{
			fmt.Sprintf("ROAS %s is comfortably above break-even %s.", Ratio(a.ROAS), Ratio(breakEven)),
			fmt.Sprintf("Stable purchases: %d today.", a.Purchases),
			"Suggested action: increase budget or duplicate into new tests.",
		}
	}
	return []string{"No action needed right now. Keep monitoring."}
}

// RecClass maps a recommendation to its pill style.
func RecClass(r models.Recommendation) string {
	switch r {
	case models.RecScale:
		return "rec-scale"
	case models.RecTurnOff:
		return "rec-off"
	case models.RecTooEarly:
		return "rec-early"
	}
	return "rec-keep"
}
