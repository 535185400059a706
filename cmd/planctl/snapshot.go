package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// snapshotFile is the on-disk layout read by `planctl plan`
type snapshotFile struct {
	ReferenceDate string              `yaml:"reference_date"`
	Stages        []domain.Stage      `yaml:"stages"`
	Orders        []domain.Order      `yaml:"orders"`
	Assignments   []domain.Assignment `yaml:"assignments"`
}

var errEmptySnapshot = errors.New("snapshot has no orders")

func loadSnapshot(path string, strict bool) (*snapshotFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return decodeSnapshot(f, strict)
}

// decodeSnapshot accepts YAML or JSON, JSON being a YAML subset.
// Unknown keys such as the UI's color or machines columns are skipped unless strict.
func decodeSnapshot(r io.Reader, strict bool) (*snapshotFile, error) {
	var file snapshotFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(strict)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptySnapshot
		}
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(file.Orders) == 0 {
		return nil, errEmptySnapshot
	}
	return &file, nil
}

// snapshot resolves the reference date: flag first, then the file, then today
func (f *snapshotFile) snapshot(dateFlag string, now time.Time) (*domain.Snapshot, error) {
	ref := domain.Today(now)
	for _, candidate := range []string{dateFlag, f.ReferenceDate} {
		if candidate == "" {
			continue
		}
		parsed, ok := domain.ParseDate(candidate)
		if !ok {
			return nil, fmt.Errorf("invalid reference date %q, want %s", candidate, domain.DateLayout)
		}
		ref = parsed
		break
	}
	return &domain.Snapshot{
		Orders:        f.Orders,
		Assignments:   f.Assignments,
		ReferenceDate: ref,
	}, nil
}

// table prefers stages embedded in the snapshot over the built-in line
func (f *snapshotFile) table() (*domain.StageTable, error) {
	if len(f.Stages) == 0 {
		return domain.NewStageTable(domain.DefaultStages())
	}
	return domain.NewStageTable(f.Stages)
}
