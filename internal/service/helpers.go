package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/mitchellh/hashstructure/v2"
)

// resolveNow honors a request's time override.
func resolveNow(override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	return time.Now().UTC()
}

// ensureEditable rejects structural edits on completed or archived
// schedules.
func ensureEditable(s *domain.Schedule) error {
	if !s.IsEditable() {
		return fmt.Errorf("schedule %s is %s; structural edits require draft or active status",
			s.DisplayID(), s.Status)
	}
	return nil
}

// The fingerprint covers exactly the scheduler inputs: anchor dates,
// calendar, durations and relationships. Names, codes and progress fields
// stay out, so a rename never invalidates computed dates.

type activityFingerprint struct {
	ID       string
	Type     string
	Duration float64
	Unit     string
}

type relationshipFingerprint struct {
	Predecessor string
	Successor   string
	Type        string
	Lag         float64
	LagUnit     string
}

type scheduleFingerprint struct {
	StartDate     string
	EndDate       string
	WorkingDays   string
	Holidays      []string
	Activities    []activityFingerprint
	Relationships []relationshipFingerprint
}

// fingerprintInputs hashes the scheduler inputs into a stable hex string.
// Slices are sorted first; two loads of the same schedule always hash the
// same.
func fingerprintInputs(s *domain.Schedule, acts []*domain.Activity, rels []*domain.Relationship) (string, error) {
	fp := scheduleFingerprint{
		StartDate:   s.StartDate.Format("2006-01-02"),
		WorkingDays: s.WorkingDays,
	}
	if s.EndDate != nil {
		fp.EndDate = s.EndDate.Format("2006-01-02")
	}
	for _, h := range s.Holidays {
		fp.Holidays = append(fp.Holidays, h.Format("2006-01-02"))
	}
	sort.Strings(fp.Holidays)

	for _, a := range acts {
		fp.Activities = append(fp.Activities, activityFingerprint{
			ID:       a.ID,
			Type:     string(a.Type),
			Duration: a.Duration,
			Unit:     string(a.Unit),
		})
	}
	sort.Slice(fp.Activities, func(i, j int) bool { return fp.Activities[i].ID < fp.Activities[j].ID })

	for _, r := range rels {
		fp.Relationships = append(fp.Relationships, relationshipFingerprint{
			Predecessor: r.PredecessorID,
			Successor:   r.SuccessorID,
			Type:        string(r.Type),
			Lag:         r.Lag,
			LagUnit:     string(r.LagUnit),
		})
	}
	sort.Slice(fp.Relationships, func(i, j int) bool {
		a, b := fp.Relationships[i], fp.Relationships[j]
		if a.Predecessor != b.Predecessor {
			return a.Predecessor < b.Predecessor
		}
		if a.Successor != b.Successor {
			return a.Successor < b.Successor
		}
		return a.Type < b.Type
	})

	h, err := hashstructure.Hash(fp, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("fingerprinting schedule inputs: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

// activityDateView shapes one activity for status and recompute output.
func activityDateView(a *domain.Activity, wbsCode string) contract.ActivityDateView {
	return contract.ActivityDateView{
		ID:              a.ID,
		Code:            a.Code,
		Name:            a.Name,
		Type:            string(a.Type),
		Duration:        a.Duration,
		DurationUnit:    string(a.Unit),
		WbsCode:         wbsCode,
		PlannedStart:    a.PlannedStart,
		PlannedEnd:      a.PlannedEnd,
		LateStart:       a.LateStart,
		LateEnd:         a.LateEnd,
		TotalFloat:      a.TotalFloat,
		Critical:        a.IsCritical,
		PercentComplete: a.PercentComplete,
		ActualStart:     a.ActualStart,
		ActualEnd:       a.ActualEnd,
	}
}

// sortViewsByPlannedStart orders views by planned start, code breaking
// ties; views without computed dates sort last.
func sortViewsByPlannedStart(views []contract.ActivityDateView) {
	sort.SliceStable(views, func(i, j int) bool {
		si, sj := views[i].PlannedStart, views[j].PlannedStart
		switch {
		case si == nil && sj == nil:
			return views[i].Code < views[j].Code
		case si == nil:
			return false
		case sj == nil:
			return true
		case si.Equal(*sj):
			return views[i].Code < views[j].Code
		default:
			return si.Before(*sj)
		}
	})
}
