package weather

import "time"

// AggregateDaily folds sub-daily forecast slots into one item per calendar
// day in loc, in slot order. Min and Max span the day's temperatures; the
// description is the first one to reach the day's highest count.
func AggregateDaily(slots []RawForecast, loc *time.Location) []RawForecast {
	if loc == nil {
		loc = time.UTC
	}

	type bucket struct {
		day      RawForecast
		counts   map[string]int
		bestText string
		best     int
	}

	var (
		order   []string
		buckets = make(map[string]*bucket)
	)
	for _, s := range slots {
		local := s.Time.In(loc)
		key := local.Format("2006-01-02")

		b, ok := buckets[key]
		if !ok {
			y, m, d := local.Date()
			b = &bucket{
				day: RawForecast{
					Time: time.Date(y, m, d, 12, 0, 0, 0, loc),
					Min:  s.Temperature,
					Max:  s.Temperature,
				},
				counts: make(map[string]int),
			}
			buckets[key] = b
			order = append(order, key)
		}

		b.day.Min = min(b.day.Min, s.Temperature)
		b.day.Max = max(b.day.Max, s.Temperature)

		b.counts[s.Text]++
		if c := b.counts[s.Text]; c > b.best {
			b.best = c
			b.bestText = s.Text
		}
	}

	out := make([]RawForecast, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		b.day.Text = b.bestText
		b.day.Temperature = b.day.Max
		out = append(out, b.day)
	}
	return out
}
