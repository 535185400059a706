package domain

import (
	"errors"
	"fmt"
	"math"
)

// ManualMachine marks a stage that is not bound to any machine
const ManualMachine = "N/A"

// ratioTolerance absorbs float noise when summing configured ratios
const ratioTolerance = 1e-9

// ErrInvalidStageTable is returned for a stage configuration that cannot partition 0..100
var ErrInvalidStageTable = errors.New("invalid stage table")

// Stage is one step of the fixed manufacturing sequence
type Stage struct {
	Name    string  `json:"name" mapstructure:"name" yaml:"name"`
	Ratio   float64 `json:"ratio" mapstructure:"ratio" yaml:"ratio"`
	Machine string  `json:"machine" mapstructure:"machine" yaml:"machine"`
}

// IsManual reports whether the stage can run without a machine
func (s Stage) IsManual() bool {
	return s.Machine == "" || s.Machine == ManualMachine
}

// MachineLabel returns the machine id or the manual sentinel
func (s Stage) MachineLabel() string {
	if s.IsManual() {
		return ManualMachine
	}
	return s.Machine
}

// StageRange is the [Start, End) percentage window a stage occupies
type StageRange struct {
	Stage Stage   `json:"stage"`
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether progress p falls inside [Start, End)
func (r StageRange) Contains(p float64) bool {
	return p >= r.Start && p < r.End
}

// Span is the width of the range in percentage points
func (r StageRange) Span() float64 {
	return r.End - r.Start
}

// DefaultStages is the six-stage cabinet line
func DefaultStages() []Stage {
	return []Stage{
		{Name: "CNC Cutting", Ratio: 15, Machine: "M01"},
		{Name: "CNC Edging", Ratio: 15, Machine: "M02"},
		{Name: "CNC Routing", Ratio: 15, Machine: "M03"},
		{Name: "Assembly", Ratio: 40, Machine: ManualMachine},
		{Name: "Quality Assurance", Ratio: 5, Machine: ManualMachine},
		{Name: "Packing", Ratio: 10, Machine: ManualMachine},
	}
}

// Ranges derives the cumulative percentage windows from the ordered stage list.
// The last range is pinned to 100 so the union is exactly [0,100].
func Ranges(stages []Stage) ([]StageRange, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages configured", ErrInvalidStageTable)
	}

	seen := make(map[string]struct{}, len(stages))
	total := 0.0
	for _, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: stage with empty name", ErrInvalidStageTable)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate stage %q", ErrInvalidStageTable, s.Name)
		}
		seen[s.Name] = struct{}{}
		if math.IsNaN(s.Ratio) || math.IsInf(s.Ratio, 0) || s.Ratio <= 0 {
			return nil, fmt.Errorf("%w: stage %q has non-positive ratio %v", ErrInvalidStageTable, s.Name, s.Ratio)
		}
		total += s.Ratio
	}
	if math.Abs(total-100) > ratioTolerance {
		return nil, fmt.Errorf("%w: ratios sum to %v, want 100", ErrInvalidStageTable, total)
	}

	ranges := make([]StageRange, len(stages))
	cursor := 0.0
	for i, s := range stages {
		end := cursor + s.Ratio
		if i == len(stages)-1 {
			end = 100
		}
		ranges[i] = StageRange{Stage: s, Index: i, Start: cursor, End: end}
		cursor = end
	}
	return ranges, nil
}

// StageTable holds the ranges derived once at startup
type StageTable struct {
	ranges []StageRange
	byName map[string]int
}

// NewStageTable validates the stages and derives their ranges
func NewStageTable(stages []Stage) (*StageTable, error) {
	ranges, err := Ranges(stages)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(ranges))
	for i, r := range ranges {
		byName[r.Stage.Name] = i
	}
	return &StageTable{ranges: ranges, byName: byName}, nil
}

// MustStageTable panics on an invalid table, for package-level defaults and tests
func MustStageTable(stages []Stage) *StageTable {
	t, err := NewStageTable(stages)
	if err != nil {
		panic(err)
	}
	return t
}

// Ranges returns a copy of the ordered ranges
func (t *StageTable) Ranges() []StageRange {
	out := make([]StageRange, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Len is the number of stages
func (t *StageTable) Len() int {
	return len(t.ranges)
}

// Lookup finds a stage range by name
func (t *StageTable) Lookup(name string) (StageRange, bool) {
	i, ok := t.byName[name]
	if !ok {
		return StageRange{}, false
	}
	return t.ranges[i], true
}

// Stages returns the stage definitions in order
func (t *StageTable) Stages() []Stage {
	out := make([]Stage, len(t.ranges))
	for i, r := range t.ranges {
		out[i] = r.Stage
	}
	return out
}
