package config

import (
	"os"
	"path/filepath"
	"testing"

	"motordrive/core"
)

func TestLoadMinimalDocument(t *testing.T) {
	s, err := Load([]byte(`{"frequency": 25000}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Frequency != 25000 {
		t.Errorf("Frequency = %d, want 25000", s.Frequency)
	}

	def := core.DefaultSettings()
	if s.PolePairs != def.PolePairs {
		t.Errorf("PolePairs = %d, want default %d", s.PolePairs, def.PolePairs)
	}
	if s.FilterWindow != def.FilterWindow {
		t.Errorf("FilterWindow = %d, want default %d", s.FilterWindow, def.FilterWindow)
	}
	if s.MaxSafeRPM != def.MaxSafeRPM {
		t.Errorf("MaxSafeRPM = %d, want default %d", s.MaxSafeRPM, def.MaxSafeRPM)
	}
}

func TestLoadEmptyDocumentIsDefaults(t *testing.T) {
	s, err := Load([]byte(`{}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := core.DefaultSettings()
	if *s != def {
		t.Errorf("empty document loaded as %+v, want defaults %+v", *s, def)
	}
}

func TestLoadZeroDutyIsPreserved(t *testing.T) {
	s, err := Load([]byte(`{"duty": 0}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Duty != 0 {
		t.Errorf("Duty = %v, want 0", s.Duty)
	}
}

func TestZeroBrightnessSurvivesRoundTrip(t *testing.T) {
	saved := core.DefaultSettings()
	saved.LEDBrightness = 0

	doc, err := Marshal(&saved)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Load(doc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.LEDBrightness != 0 {
		t.Errorf("saved brightness 0 came back %d", got.LEDBrightness)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"frequency too high", `{"frequency": 600000}`},
		{"duty too high", `{"duty": 101}`},
		{"pole pairs too high", `{"pole_pairs": 13}`},
		{"filter window too wide", `{"filter_window": 21}`},
		{"rpm cadence too fast", `{"rpm_update_ms": 5}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load([]byte(tc.doc)); err == nil {
				t.Errorf("Load(%s) accepted out-of-range value", tc.doc)
			}
		})
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	if _, err := Load([]byte(`{"frequency": `)); err == nil {
		t.Error("Load accepted malformed JSON")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.json")

	want := core.DefaultSettings()
	want.Frequency = 40000
	want.Duty = 62.5
	want.AutoStopOnOverspeed = true

	if err := SaveFile(path, &want); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if *got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *got, want)
	}
}

func TestLoadFileMissingIsDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "no-such-file.json"))
	if err != nil {
		t.Fatalf("LoadFile on missing file failed: %v", err)
	}
	def := core.DefaultSettings()
	if *s != def {
		t.Errorf("missing file loaded as %+v, want defaults %+v", *s, def)
	}
}

func TestLoadFileUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir-not-file")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile on a directory did not fail")
	}
}
