package rollup

import (
	"fmt"
	"sort"
	"time"

	"github.com/akarolczak/critpath/internal/calendar"
)

// Bucket selects the period width of a time-phased profile.
type Bucket string

const (
	BucketDay  Bucket = "day"
	BucketWeek Bucket = "week"
)

// ParseBucket maps a flag value to a Bucket. Empty means daily.
func ParseBucket(s string) (Bucket, error) {
	switch s {
	case "", "day":
		return BucketDay, nil
	case "week":
		return BucketWeek, nil
	default:
		return "", fmt.Errorf("unknown bucket %q (valid: day, week)", s)
	}
}

// Period is one bucket of the profile. Start is the bucket's first calendar
// day (the date itself for daily buckets, the ISO week's Monday for weekly),
// Label its display form ("2026-03-02" or "2026-W10").
type Period struct {
	Start        time.Time
	Label        string
	PlannedUnits float64
	ActualUnits  float64
	ByResource   []ResourceTotal
}

// Profile is a time-phased view of the schedule's assignments, periods in
// chronological order.
type Profile struct {
	Bucket  Bucket
	Periods []Period
}

// TimePhased spreads each assignment's planned and actual units uniformly
// over the working days in the activity's [planned_start, planned_end) span
// and sums them into buckets. Spans with no working days, milestones above
// all, book everything on the start date. Activities that carry assignments
// but no planned dates fail the profile; compute the schedule first.
func TimePhased(in Input, bucket Bucket) (*Profile, error) {
	ix, err := buildIndexes(in)
	if err != nil {
		return nil, err
	}
	if err := validateAssignments(ix, in.Assignments); err != nil {
		return nil, err
	}
	cal := in.Calendar
	if cal == nil {
		cal = calendar.Default()
	}

	type acc struct {
		planned, actual float64
		byRes           map[string]*ResourceTotal
	}
	periods := make(map[time.Time]*acc)

	for _, asg := range in.Assignments {
		act := ix.activities[asg.ActivityID]
		if act.PlannedStart == nil || act.PlannedEnd == nil {
			return nil, fmt.Errorf("activity %s has no planned dates", act.DisplayID())
		}
		days := workingDaySpan(cal, *act.PlannedStart, *act.PlannedEnd)
		share := 1.0 / float64(len(days))
		for _, day := range days {
			start := day
			if bucket == BucketWeek {
				start = isoWeekStart(day)
			}
			p := periods[start]
			if p == nil {
				p = &acc{byRes: make(map[string]*ResourceTotal)}
				periods[start] = p
			}
			p.planned += asg.PlannedUnits * share
			p.actual += asg.ActualUnits * share
			rt := p.byRes[asg.ResourceID]
			if rt == nil {
				rt = &ResourceTotal{ResourceID: asg.ResourceID}
				p.byRes[asg.ResourceID] = rt
			}
			rt.PlannedUnits += asg.PlannedUnits * share
			rt.ActualUnits += asg.ActualUnits * share
		}
	}

	starts := make([]time.Time, 0, len(periods))
	for s := range periods {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	prof := &Profile{Bucket: bucket}
	for _, s := range starts {
		p := periods[s]
		prof.Periods = append(prof.Periods, Period{
			Start:        s,
			Label:        bucketLabel(s, bucket),
			PlannedUnits: p.planned,
			ActualUnits:  p.actual,
			ByResource:   sortedTotals(p.byRes, ix.resources),
		})
	}
	return prof, nil
}

// workingDaySpan lists the working dates in the half-open span. An empty
// span, or one that covers no working day at all, collapses to the start
// date so zero-span activities still book their units somewhere.
func workingDaySpan(cal *calendar.Calendar, start, end time.Time) []time.Time {
	var days []time.Time
	for cur := dateOf(start); cur.Before(end); cur = cur.AddDate(0, 0, 1) {
		if cal.IsWorkingDay(cur) {
			days = append(days, cur)
		}
	}
	if len(days) == 0 {
		return []time.Time{dateOf(start)}
	}
	return days
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekStart returns the Monday of t's ISO week.
func isoWeekStart(t time.Time) time.Time {
	off := (int(t.Weekday()) + 6) % 7
	return dateOf(t).AddDate(0, 0, -off)
}

func bucketLabel(start time.Time, bucket Bucket) string {
	if bucket == BucketWeek {
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return start.Format("2006-01-02")
}
