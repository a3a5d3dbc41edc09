package contract

import "time"

// ReportRequest asks for a resource usage report over one schedule.
type ReportRequest struct {
	ScheduleID string

	// TimePhased adds a bucketed profile over the computed dates.
	TimePhased bool

	// Bucket is the profile width, "day" or "week". Empty means day.
	Bucket string

	// Now overrides the current time; nil means time.Now().UTC().
	Now *time.Time
}

// NewReportRequest returns a report request with defaults.
func NewReportRequest(scheduleID string) ReportRequest {
	return ReportRequest{ScheduleID: scheduleID, TimePhased: false, Bucket: "day"}
}

// ResourceUsageRow is one resource's totals with its display fields joined
// in.
type ResourceUsageRow struct {
	ResourceID   string
	Code         string
	Name         string
	UnitLabel    string
	PlannedUnits float64
	ActualUnits  float64
}

// ActivityUsageRow is one activity's assignment totals with a per-resource
// breakdown.
type ActivityUsageRow struct {
	ActivityID   string
	Code         string
	Name         string
	PlannedUnits float64
	ActualUnits  float64
	ByResource   []ResourceUsageRow
}

// WbsUsageRow is one WBS node's subtree totals.
type WbsUsageRow struct {
	NodeID       string
	Code         string
	Name         string
	Level        int
	PlannedUnits float64
	ActualUnits  float64
}

// UsagePeriodRow is one bucket of a time-phased profile.
type UsagePeriodRow struct {
	Start        time.Time
	Label        string
	PlannedUnits float64
	ActualUnits  float64
	ByResource   []ResourceUsageRow
}

// UsageProfile is the time-phased section of a report.
type UsageProfile struct {
	Bucket  string
	Periods []UsagePeriodRow
}

// ReportResponse is the full usage report the report command renders. Wbs
// rows are ordered parents before children, depth first, so the table reads
// like the tree.
type ReportResponse struct {
	GeneratedAt  time.Time
	ScheduleID   string
	ScheduleCode string

	PlannedUnits float64
	ActualUnits  float64

	Resources  []ResourceUsageRow
	Activities []ActivityUsageRow
	Wbs        []WbsUsageRow

	// Profile is nil unless the request asked for a time-phased report.
	Profile *UsageProfile

	Warnings []string
}
