package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseSeasonLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{label: "1905-06", want: 1905, ok: true},
		{label: "1905_06", want: 1905, ok: true},
		{label: "1905-1906", want: 1905, ok: true},
		{label: "190506", want: 1905, ok: true},
		{label: "1999-00", want: 1999, ok: true},
		{label: "1905-07", ok: false},
		{label: "bilder", ok: false},
		{label: "2024", ok: false},
	}

	for _, tc := range tests {
		got, ok := ParseSeasonLabel(tc.label)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseSeasonLabel(%q): want %d/%t, got %d/%t", tc.label, tc.want, tc.ok, got, ok)
		}
	}
}

func TestPatternsClassify(t *testing.T) {
	t.Parallel()

	patterns := DefaultPatterns()
	for name, want := range map[string]Role{
		"bundesliga_01.html":       RoleLeague,
		"Oberliga-Suedwest.html":   RoleLeague,
		"dfbpokal_1.html":          RoleCup,
		"freundschaftsspiele.html": RoleFriendly,
		"amateure_oberliga.html":   RoleExcluded,
		"ajugend.html":             RoleExcluded,
		"vereinsgeschichte.html":   RoleUnknown,
	} {
		if got := patterns.Classify(name); got != want {
			t.Fatalf("Classify(%q): want %s, got %s", name, want, got)
		}
	}

	extended := patterns.Merge(Patterns{League: []string{"vereinsgeschichte*"}})
	if got := extended.Classify("vereinsgeschichte.html"); got != RoleLeague {
		t.Fatalf("merged pattern not applied, got %s", got)
	}
	if len(patterns.League) == len(extended.League) {
		t.Fatalf("merge must not modify the receiver")
	}
	if err := (Patterns{Cup: []string{"[a-"}}).Validate(); err == nil {
		t.Fatalf("expected invalid pattern error")
	}
}

func TestSourceSeasonsAndFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1973-74", "bundesliga_02.html"), "<html></html>")
	writeFile(t, filepath.Join(root, "1973-74", "bundesliga_01.html"), "<html>first</html>")
	writeFile(t, filepath.Join(root, "1973-74", "notes.txt"), "skip")
	writeFile(t, filepath.Join(root, "1905_06", "liga.html"), "<html></html>")
	writeFile(t, filepath.Join(root, "190809", "freundschaft.html"), "<html></html>")
	writeFile(t, filepath.Join(root, "bilder", "logo.html"), "<html></html>")

	source, err := NewOpener(DefaultPatterns()).Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	seasons, err := source.Seasons()
	if err != nil {
		t.Fatalf("Seasons error: %v", err)
	}
	if len(seasons) != 3 {
		t.Fatalf("expected 3 seasons, got %+v", seasons)
	}
	if seasons[0].Label != "1905_06" || seasons[1].Label != "190809" || seasons[2].Label != "1973-74" {
		t.Fatalf("seasons not ordered by start year: %+v", seasons)
	}

	files, err := source.Files(seasons[2])
	if err != nil {
		t.Fatalf("Files error: %v", err)
	}
	if len(files) != 2 || files[0].Name != "bundesliga_01.html" || files[0].Role != RoleLeague {
		t.Fatalf("unexpected files: %+v", files)
	}
	if files[0].RelPath() != "1973-74/bundesliga_01.html" {
		t.Fatalf("unexpected rel path %s", files[0].RelPath())
	}

	data, err := source.Read(files[0])
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(data) != "<html>first</html>" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestOpenerRejectsMissingRoot(t *testing.T) {
	t.Parallel()

	opener := NewOpener(DefaultPatterns())
	if _, err := opener.Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "archive.html")
	writeFile(t, file, "x")
	if _, err := opener.Open(file); !errors.Is(err, ErrNotADirectory) {
		t.Fatalf("expected ErrNotADirectory, got %v", err)
	}
}
