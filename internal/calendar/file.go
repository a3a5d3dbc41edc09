package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akarolczak/critpath/internal/domain"
)

// File is the on-disk calendar definition accepted by `schedule calendar
// --file`. Holidays are plain YYYY-MM-DD strings so the file stays
// hand-editable.
type File struct {
	WorkingDays string   `yaml:"working_days"`
	Holidays    []string `yaml:"holidays"`
}

// LoadFile reads a YAML calendar definition and returns the validated mask
// and parsed holiday dates. An omitted working_days falls back to the
// standard five-day week.
func LoadFile(path string) (string, []time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading calendar file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("parsing calendar file: %w", err)
	}

	mask := f.WorkingDays
	if mask == "" {
		mask = domain.DefaultWorkingDays
	}
	holidays := make([]time.Time, 0, len(f.Holidays))
	for _, h := range f.Holidays {
		d, err := time.Parse(dateLayout, h)
		if err != nil {
			return "", nil, fmt.Errorf("parsing holiday %q (want YYYY-MM-DD): %w", h, err)
		}
		holidays = append(holidays, d.UTC())
	}

	// Validate the combination before handing it to callers.
	if _, err := New(mask, holidays); err != nil {
		return "", nil, err
	}
	return mask, holidays, nil
}
