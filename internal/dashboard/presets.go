package dashboard

import "time"

type DateRange struct {
	From time.Time
	To   time.Time
}

// Preset is a named date window. Backend is the date_preset value the
// insights endpoint understands.
type Preset struct {
	Key     string
	Label   string
	Backend string
	Range   func(now time.Time) DateRange
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func lastDays(n int) func(time.Time) DateRange {
	return func(now time.Time) DateRange {
		return DateRange{From: startOfDay(now).AddDate(0, 0, -(n - 1)), To: now}
	}
}

var Presets = []Preset{
	{Key: "today", Label: "Today", Backend: "today", Range: func(now time.Time) DateRange {
		return DateRange{From: startOfDay(now), To: now}
	}},
	{Key: "yesterday", Label: "Yesterday", Backend: "yesterday", Range: func(now time.Time) DateRange {
		t := startOfDay(now)
		return DateRange{From: t.AddDate(0, 0, -1), To: t}
	}},
	{Key: "last7", Label: "Last 7 days", Backend: "last_7d", Range: lastDays(7)},
	{Key: "last14", Label: "Last 14 days", Backend: "last_14d", Range: lastDays(14)},
	{Key: "last30", Label: "Last 30 days", Backend: "last_30d", Range: lastDays(30)},
	{Key: "thisMonth", Label: "This month", Backend: "this_month", Range: func(now time.Time) DateRange {
		y, m, _ := now.Date()
		return DateRange{From: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), To: now}
	}},
}

func PresetByKey(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key || p.Backend == key {
			return p, true
		}
	}
	return Preset{}, false
}
