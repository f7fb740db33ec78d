package core

import (
	"errors"
	"fmt"
	"math"
)

// DataFile is the dataset the dashboard reports on. It is read relative to
// the working directory and is not configurable.
const DataFile = "WA_Fn-UseC_-HR-Employee-Attrition.csv"

// Column names the dashboard depends on.
const (
	ColAge               = "Age"
	ColAttrition         = "Attrition"
	ColDepartment        = "Department"
	ColGender            = "Gender"
	ColWorkLifeBalance   = "WorkLifeBalance"
	ColTotalWorkingYears = "TotalWorkingYears"

	// ColAgeGroup is the derived age band column.
	ColAgeGroup = "AgeGroup"
)

// RequiredColumns lists the source columns a dataset must carry.
var RequiredColumns = []string{
	ColAge,
	ColAttrition,
	ColDepartment,
	ColGender,
	ColWorkLifeBalance,
	ColTotalWorkingYears,
}

type (
	// AgeBand is a fixed-width age bucket label such as "26-35".
	AgeBand string

	bandRange struct {
		band AgeBand
		// upper is inclusive; the lower edge is the previous band's upper.
		upper float64
	}
)

const (
	Band18to25 AgeBand = "18-25"
	Band26to35 AgeBand = "26-35"
	Band36to45 AgeBand = "36-45"
	Band46to55 AgeBand = "46-55"
	Band56to65 AgeBand = "56-65"
)

const (
	MinBandedAge = 18
	MaxBandedAge = 65
)

var bandRanges = []bandRange{
	{Band18to25, 25},
	{Band26to35, 35},
	{Band36to45, 45},
	{Band46to55, 55},
	{Band56to65, 65},
}

// AgeBands returns the five bands in display order.
func AgeBands() []AgeBand {
	out := make([]AgeBand, len(bandRanges))
	for i, r := range bandRanges {
		out[i] = r.band
	}
	return out
}

// BandForAge buckets an age. Bin edges are 18, 25, 35, 45, 55 and 65; each
// bin includes its upper edge and the first bin also includes 18. Ages
// outside [18, 65] and NaN report ok == false.
func BandForAge(age float64) (band AgeBand, ok bool) {
	if math.IsNaN(age) || age < MinBandedAge || age > MaxBandedAge {
		return "", false
	}
	for _, r := range bandRanges {
		if age <= r.upper {
			return r.band, true
		}
	}
	return "", false
}

// Bounds returns the inclusive integer age range a band label names.
func (b AgeBand) Bounds() (lo, hi int, err error) {
	if _, err := fmt.Sscanf(string(b), "%d-%d", &lo, &hi); err != nil {
		return 0, 0, fmt.Errorf("invalid age band %q: %w", string(b), err)
	}
	return lo, hi, nil
}

func (b AgeBand) String() string {
	return string(b)
}

var (
	// ErrDataUnavailable reports a dataset that is missing, unreadable or
	// malformed. It is fatal for the whole dashboard.
	ErrDataUnavailable = errors.New("data unavailable")
)

// DataUnavailableError carries the path and cause of a failed load.
type DataUnavailableError struct {
	Path string
	Err  error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDataUnavailable, e.Path, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Is matches ErrDataUnavailable so callers can test the kind without
// knowing the cause.
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// DataUnavailable wraps err as a DataUnavailableError for path.
func DataUnavailable(path string, err error) error {
	return &DataUnavailableError{Path: path, Err: err}
}
