package dataset

import (
	"fmt"

	"github.com/go-gota/gota/series"

	"attrition/internal/core"
)

// missingCategory is how gota marks an unset string element.
const missingCategory = "NaN"

// WithAgeBand returns a copy of t with the AgeGroup column appended, or
// recomputed from Age when already present. Ages without a band are stored
// as missing.
func WithAgeBand(t *Table) (*Table, error) {
	ages, err := t.Floats(core.ColAge)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", core.ColAgeGroup, err)
	}

	bands := make([]string, len(ages))
	for i, age := range ages {
		if b, ok := core.BandForAge(age); ok {
			bands[i] = b.String()
		} else {
			bands[i] = missingCategory
		}
	}

	frame := t.frame.Mutate(series.New(bands, series.String, core.ColAgeGroup))
	if frame.Err != nil {
		return nil, fmt.Errorf("derive %s: %w", core.ColAgeGroup, frame.Err)
	}

	out := *t
	out.frame = frame
	return &out, nil
}
