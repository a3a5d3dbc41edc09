package repository

import (
	"database/sql"
	"time"
)

// Column codecs shared by the SQLite repositories. Calendar dates are stored
// as bare YYYY-MM-DD strings, computed and actual timestamps as RFC3339,
// booleans as 0/1 integers, and absent optional values as NULL. The scan*
// functions decode a column, the *Arg functions encode a bind parameter.

// dateLayout is the storage form of schedule start, end and holiday dates.
const dateLayout = "2006-01-02"

func scanTime(col sql.NullString, layout string) *time.Time {
	if !col.Valid || col.String == "" {
		return nil
	}
	t, err := time.Parse(layout, col.String)
	if err != nil {
		return nil
	}
	return &t
}

func timeArg(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func scanBool(col int) bool {
	return col != 0
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

// stampNow is the RFC3339 UTC timestamp written to audit columns.
func stampNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
