package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fixture is one viewer-request contract case. The fixtures are the
// language-independent source of truth: every runner, whatever renders or
// executes the edge function, must produce the same outcome for them.
type Fixture struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Rule    FixtureRule   `json:"rule"`
	Request FixtureViewer `json:"request"`
	Expect  FixtureExpect `json:"expect"`
}

type FixtureRule struct {
	AliasHost   string `json:"alias_host"`
	PrimaryHost string `json:"primary_host"`
}

// FixtureViewer mirrors the viewer-request fields the rule inspects.
type FixtureViewer struct {
	Host        string `json:"host"`
	URI         string `json:"uri"`
	QueryString string `json:"querystring"`
}

// FixtureExpect holds exactly one of the two outcomes.
type FixtureExpect struct {
	Redirect    *FixtureRedirect `json:"redirect,omitempty"`
	PassThrough bool             `json:"pass_through,omitempty"`
}

type FixtureRedirect struct {
	Status   int    `json:"status"`
	Location string `json:"location"`
}

func loadFixtures(fixturesRoot string) ([]Fixture, error) {
	files, err := filepath.Glob(filepath.Join(fixturesRoot, "viewer", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob viewer fixtures: %w", err)
	}

	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.New("no fixtures found")
	}

	fixtures := make([]Fixture, 0, len(files))
	for _, file := range files {
		//nolint:gosec // Fixture files are discovered from the repo-owned fixtures directory.
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", file, err)
		}

		var f Fixture
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", file, err)
		}
		if strings.TrimSpace(f.ID) == "" {
			return nil, fmt.Errorf("fixture %s missing id", file)
		}
		fixtures = append(fixtures, f)
	}

	return fixtures, nil
}
