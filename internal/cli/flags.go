package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// dateValue is a pflag.Value that parses YYYY-MM-DD into a UTC midnight
// time.Time, so malformed dates are rejected at flag-parse time.
type dateValue struct {
	t *time.Time
}

func (d *dateValue) Set(s string) error {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	*d.t = parsed.UTC()
	return nil
}

func (d *dateValue) String() string {
	if d.t == nil || d.t.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

func (d *dateValue) Type() string { return "date" }

// dateFlag registers a YYYY-MM-DD flag bound to target.
func dateFlag(fs *pflag.FlagSet, target *time.Time, name, usage string) {
	fs.Var(&dateValue{t: target}, name, usage)
}

// dateListValue collects a repeatable YYYY-MM-DD flag into a slice.
type dateListValue struct {
	dates *[]time.Time
}

func (d *dateListValue) Set(s string) error {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	*d.dates = append(*d.dates, parsed.UTC())
	return nil
}

func (d *dateListValue) String() string {
	if d.dates == nil || len(*d.dates) == 0 {
		return ""
	}
	out := make([]string, len(*d.dates))
	for i, t := range *d.dates {
		out[i] = t.Format("2006-01-02")
	}
	return fmt.Sprintf("%v", out)
}

func (d *dateListValue) Type() string { return "dateList" }

// dateListFlag registers a repeatable YYYY-MM-DD flag bound to target.
func dateListFlag(fs *pflag.FlagSet, target *[]time.Time, name, usage string) {
	fs.Var(&dateListValue{dates: target}, name, usage)
}
