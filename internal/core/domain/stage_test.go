package domain

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanges_DefaultLine(t *testing.T) {
	ranges, err := Ranges(DefaultStages())
	require.NoError(t, err)
	require.Len(t, ranges, 6)

	want := []struct {
		name       string
		start, end float64
	}{
		{"CNC Cutting", 0, 15},
		{"CNC Edging", 15, 30},
		{"CNC Routing", 30, 45},
		{"Assembly", 45, 85},
		{"Quality Assurance", 85, 90},
		{"Packing", 90, 100},
	}
	for i, w := range want {
		assert.Equal(t, w.name, ranges[i].Stage.Name)
		assert.Equal(t, i, ranges[i].Index)
		assert.InDelta(t, w.start, ranges[i].Start, 1e-9, w.name)
		assert.InDelta(t, w.end, ranges[i].End, 1e-9, w.name)
	}
}

func TestRanges_ContiguousAndPinned(t *testing.T) {
	stages := []Stage{
		{Name: "a", Ratio: 33.3},
		{Name: "b", Ratio: 33.3},
		{Name: "c", Ratio: 33.4},
	}
	ranges, err := Ranges(stages)
	require.NoError(t, err)

	assert.Equal(t, 0.0, ranges[0].Start)
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].End, ranges[i].Start)
	}
	assert.Equal(t, 100.0, ranges[len(ranges)-1].End)
}

// randomStages cuts [0,100] at n-1 distinct integer points
func randomStages(rng *rand.Rand, n int) []Stage {
	cuts := rng.Perm(99)[:n-1]
	for i := range cuts {
		cuts[i]++
	}
	sort.Ints(cuts)
	cuts = append(cuts, 100)

	stages := make([]Stage, n)
	prev := 0
	for i, c := range cuts {
		stages[i] = Stage{Name: fmt.Sprintf("s%d", i), Ratio: float64(c - prev)}
		prev = c
	}
	return stages
}

func TestRanges_RandomTablesPartitionTheRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		stages := randomStages(rng, 1+rng.Intn(10))
		ranges, err := Ranges(stages)
		require.NoError(t, err)

		assert.Equal(t, 0.0, ranges[0].Start)
		assert.Equal(t, 100.0, ranges[len(ranges)-1].End)
		for i, r := range ranges {
			assert.InDelta(t, stages[i].Ratio, r.Span(), 1e-9)
			if i > 0 {
				assert.Equal(t, ranges[i-1].End, r.Start)
			}
		}

		// every progress value lands in exactly one stage
		for p := 0.0; p < 100; p += 0.5 {
			hits := 0
			for _, r := range ranges {
				if r.Contains(p) {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "progress %v", p)
		}
	}
}

func TestRanges_Invalid(t *testing.T) {
	cases := map[string][]Stage{
		"empty":         nil,
		"empty name":    {{Name: "", Ratio: 100}},
		"duplicate":     {{Name: "a", Ratio: 50}, {Name: "a", Ratio: 50}},
		"zero ratio":    {{Name: "a", Ratio: 0}, {Name: "b", Ratio: 100}},
		"negative":      {{Name: "a", Ratio: -10}, {Name: "b", Ratio: 110}},
		"nan":           {{Name: "a", Ratio: math.NaN()}},
		"short of 100":  {{Name: "a", Ratio: 40}, {Name: "b", Ratio: 50}},
		"more than 100": {{Name: "a", Ratio: 60}, {Name: "b", Ratio: 50}},
	}
	for name, stages := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Ranges(stages)
			assert.ErrorIs(t, err, ErrInvalidStageTable)
		})
	}
}

func TestStageRange_Contains(t *testing.T) {
	r := StageRange{Start: 45, End: 85}
	assert.True(t, r.Contains(45))
	assert.True(t, r.Contains(84.999))
	assert.False(t, r.Contains(85))
	assert.False(t, r.Contains(44.9))
	assert.Equal(t, 40.0, r.Span())
}

func TestStageTable_Lookup(t *testing.T) {
	table := MustStageTable(DefaultStages())
	assert.Equal(t, 6, table.Len())

	r, ok := table.Lookup("Assembly")
	require.True(t, ok)
	assert.Equal(t, 3, r.Index)
	assert.True(t, r.Stage.IsManual())
	assert.Equal(t, ManualMachine, r.Stage.MachineLabel())

	_, ok = table.Lookup("Painting")
	assert.False(t, ok)

	// callers cannot mutate the table through the returned slice
	ranges := table.Ranges()
	ranges[0].End = 99
	again, _ := table.Lookup("CNC Cutting")
	assert.Equal(t, 15.0, again.End)

	assert.Equal(t, DefaultStages(), table.Stages())
}

func TestStage_MachineLabel(t *testing.T) {
	assert.Equal(t, "M01", Stage{Name: "x", Machine: "M01"}.MachineLabel())
	assert.Equal(t, ManualMachine, Stage{Name: "x"}.MachineLabel())
	assert.False(t, Stage{Name: "x", Machine: "M01"}.IsManual())
}

func TestMustStageTable_Panics(t *testing.T) {
	assert.Panics(t, func() { MustStageTable(nil) })
}
