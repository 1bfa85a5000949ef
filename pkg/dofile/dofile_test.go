package dofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// touch creates an empty file at the specified path.
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal("unable to create file:", err)
	}
}

// TestFindDirect tests resolution of a dofile named after its target.
func TestFindDirect(t *testing.T) {
	directory := t.TempDir()
	touch(t, filepath.Join(directory, "x.do"))

	var misses []string
	dofile, ok := Find(directory, "x", func(candidate string) {
		misses = append(misses, candidate)
	})
	if !ok {
		t.Fatal("dofile not found")
	}
	if dofile != "./x.do" {
		t.Error("unexpected dofile:", dofile)
	}
	if len(misses) != 0 {
		t.Error("unexpected candidate misses:", misses)
	}
}

// TestFindDefaultWithSuffix tests the default.<suffix>.do cascade, including
// recording of missed candidates.
func TestFindDefaultWithSuffix(t *testing.T) {
	directory := t.TempDir()
	touch(t, filepath.Join(directory, "default.o.do"))

	var misses []string
	dofile, ok := Find(directory, "x.o", func(candidate string) {
		misses = append(misses, candidate)
	})
	if !ok {
		t.Fatal("dofile not found")
	}
	if dofile != "./default.o.do" {
		t.Error("unexpected dofile:", dofile)
	}
	expected := []string{"./x.o.do"}
	if diff := cmp.Diff(expected, misses); diff != "" {
		t.Error("unexpected candidate misses (-want +got):", diff)
	}
}

// TestFindAscending tests that the search walks up to ancestor directories
// and records every candidate probed along the way.
func TestFindAscending(t *testing.T) {
	root := t.TempDir()
	directory := filepath.Join(root, "sub")
	if err := os.Mkdir(directory, 0755); err != nil {
		t.Fatal("unable to create subdirectory:", err)
	}
	touch(t, filepath.Join(root, "default.do"))

	var misses []string
	dofile, ok := Find(directory, "y", func(candidate string) {
		misses = append(misses, candidate)
	})
	if !ok {
		t.Fatal("dofile not found")
	}
	if dofile != "./../default.do" {
		t.Error("unexpected dofile:", dofile)
	}
	expected := []string{"./y.do", "./default.do", "./../y.do"}
	if diff := cmp.Diff(expected, misses); diff != "" {
		t.Error("unexpected candidate misses (-want +got):", diff)
	}
}

// TestFindMultipleSuffixes tests that every dot-delimited suffix is probed in
// left-stripped order.
func TestFindMultipleSuffixes(t *testing.T) {
	directory := t.TempDir()
	touch(t, filepath.Join(directory, "default.b.do"))

	var misses []string
	dofile, ok := Find(directory, "base.a.b", func(candidate string) {
		misses = append(misses, candidate)
	})
	if !ok {
		t.Fatal("dofile not found")
	}
	if dofile != "./default.b.do" {
		t.Error("unexpected dofile:", dofile)
	}
	expected := []string{"./base.a.b.do", "./default.a.b.do"}
	if diff := cmp.Diff(expected, misses); diff != "" {
		t.Error("unexpected candidate misses (-want +got):", diff)
	}
}

// TestFindAbsent tests the not-found result.
func TestFindAbsent(t *testing.T) {
	if _, ok := Find(t.TempDir(), "nothing", nil); ok {
		t.Error("nonexistent dofile unexpectedly found")
	}
}

// TestBasename tests second-argument derivation.
func TestBasename(t *testing.T) {
	tests := []struct {
		dofile   string
		target   string
		expected string
	}{
		{"x.do", "x", "x"},
		{"x.o.do", "x.o", "x.o"},
		{"default.o.do", "x.o", "x"},
		{"default.o.do", "sub/x.o", "sub/x"},
		{"default.tar.gz.do", "dist.tar.gz", "dist"},
		{"default.do", "x", "x"},
		{"default.o.do", "plain", "plain"},
	}
	for _, test := range tests {
		if basename := Basename(test.dofile, test.target); basename != test.expected {
			t.Error("unexpected basename for", test.dofile, test.target, ":",
				basename, "!=", test.expected)
		}
	}
}
