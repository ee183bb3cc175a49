package quota

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "Europe/Istanbul"

// Istanbul has been fixed at UTC+3 without DST since 2016.
var istanbulFallback = time.FixedZone("+03", 3*60*60)

// LoadLocation resolves the zone quota days are aligned to.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return istanbulFallback, nil
	}
	return nil, fmt.Errorf("load quota timezone %q: %w", name, err)
}

// Day is one civil calendar day in the quota zone, as a half-open [Start, End) interval.
type Day struct {
	Key   string
	Start time.Time
	End   time.Time
}

func DayOf(t time.Time, loc *time.Location) Day {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return Day{
		Key:   start.Format(time.DateOnly),
		Start: start.UTC(),
		End:   end.UTC(),
	}
}

func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}
