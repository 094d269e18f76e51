package archive

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

var ErrNotADirectory = crerr.New("archive root is not a directory")

// Role is what a file contributes to a season.
type Role string

const (
	RoleLeague   Role = "league"
	RoleCup      Role = "cup"
	RoleFriendly Role = "friendly"
	RoleExcluded Role = "excluded"
	RoleUnknown  Role = "unknown"
)

// Processed reports whether files of this role are loaded.
func (r Role) Processed() bool {
	return r == RoleLeague || r == RoleCup || r == RoleFriendly
}

// Patterns are lowercase path.Match globs per role. Excluded wins over every
// other role.
type Patterns struct {
	League   []string `yaml:"league"`
	Cup      []string `yaml:"cup"`
	Friendly []string `yaml:"friendly"`
	Excluded []string `yaml:"excluded"`
}

func DefaultPatterns() Patterns {
	return Patterns{
		League:   []string{"liga*", "bundesliga*", "oberliga*", "gauliga*", "bezirksliga*", "regionalliga*", "zweiteliga*", "kreisliga*", "meisterschaft*"},
		Cup:      []string{"pokal*", "dfbpokal*", "dfb-pokal*", "tschammerpokal*"},
		Friendly: []string{"freundschaft*", "friendly*", "testspiel*"},
		Excluded: []string{"amateure*", "jugend*", "ajugend*", "bjugend*", "u19*", "u21*", "u23*", "reserve*", "frauen*"},
	}
}

// Merge appends extra patterns to p.
func (p Patterns) Merge(extra Patterns) Patterns {
	return Patterns{
		League:   append(append([]string(nil), p.League...), extra.League...),
		Cup:      append(append([]string(nil), p.Cup...), extra.Cup...),
		Friendly: append(append([]string(nil), p.Friendly...), extra.Friendly...),
		Excluded: append(append([]string(nil), p.Excluded...), extra.Excluded...),
	}
}

func (p Patterns) Validate() error {
	for _, group := range [][]string{p.League, p.Cup, p.Friendly, p.Excluded} {
		for _, pattern := range group {
			if _, err := path.Match(strings.ToLower(pattern), ""); err != nil {
				return crerr.Wrapf(err, "invalid file pattern %q", pattern)
			}
		}
	}
	return nil
}

// Classify returns the role for a file name.
func (p Patterns) Classify(name string) Role {
	base := strings.ToLower(filepath.Base(name))
	switch {
	case matchAny(p.Excluded, base):
		return RoleExcluded
	case matchAny(p.Friendly, base):
		return RoleFriendly
	case matchAny(p.Cup, base):
		return RoleCup
	case matchAny(p.League, base):
		return RoleLeague
	default:
		return RoleUnknown
	}
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(strings.ToLower(pattern), name); ok {
			return true
		}
	}
	return false
}

// Season is one season directory.
type Season struct {
	Label     string
	StartYear int
	Dir       string
}

// File is one HTML file of a season.
type File struct {
	Season string
	Name   string
	Path   string
	Role   Role
}

// RelPath is the file path relative to the archive root, stored as the
// match source.
func (f File) RelPath() string {
	return f.Season + "/" + f.Name
}

var seasonDirRegex = regexp.MustCompile(`^(\d{4})(?:[-_/](\d{2}|\d{4})|(\d{2}))$`)

// ParseSeasonLabel accepts "1905-06", "1905_06", "1905-1906" and "190506".
func ParseSeasonLabel(name string) (int, bool) {
	m := seasonDirRegex.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}

	end := m[2]
	if end == "" {
		end = m[3]
	}
	endYear, err := strconv.Atoi(end)
	if err != nil {
		return 0, false
	}
	if len(end) == 2 {
		if endYear != (start+1)%100 {
			return 0, false
		}
	} else if endYear != start+1 {
		return 0, false
	}
	return start, true
}

type Opener struct {
	patterns Patterns
}

func NewOpener(patterns Patterns) *Opener {
	return &Opener{patterns: patterns}
}

// Open checks that root is a readable directory.
func (o *Opener) Open(root string) (*Source, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, crerr.New("archive root is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, crerr.Wrapf(err, "stat archive root %q", root)
	}
	if !info.IsDir() {
		return nil, crerr.Wrapf(ErrNotADirectory, "open %q", root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, crerr.Wrapf(err, "read archive root %q", root)
	}
	return &Source{root: root, patterns: o.patterns}, nil
}

// Source reads an archive laid out as <root>/<season>/<file>.html.
type Source struct {
	root     string
	patterns Patterns
}

func (s *Source) Root() string {
	return s.root
}

// Seasons lists season directories ordered by start year. Other entries are
// ignored.
func (s *Source) Seasons() ([]Season, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, crerr.Wrapf(err, "list seasons in %q", s.root)
	}

	seasons := make([]Season, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		start, ok := ParseSeasonLabel(entry.Name())
		if !ok {
			continue
		}
		seasons = append(seasons, Season{
			Label:     entry.Name(),
			StartYear: start,
			Dir:       filepath.Join(s.root, entry.Name()),
		})
	}

	sort.SliceStable(seasons, func(i, j int) bool {
		if seasons[i].StartYear != seasons[j].StartYear {
			return seasons[i].StartYear < seasons[j].StartYear
		}
		return seasons[i].Label < seasons[j].Label
	})
	return seasons, nil
}

// Files lists the HTML files of a season in lexical order with their roles.
func (s *Source) Files(season Season) ([]File, error) {
	entries, err := os.ReadDir(season.Dir)
	if err != nil {
		return nil, crerr.Wrapf(err, "list files in season %s", season.Label)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".html" && ext != ".htm" {
			continue
		}
		files = append(files, File{
			Season: season.Label,
			Name:   entry.Name(),
			Path:   filepath.Join(season.Dir, entry.Name()),
			Role:   s.patterns.Classify(entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Read returns the file contents.
func (s *Source) Read(file File) ([]byte, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open %s", file.RelPath())
	}
	defer f.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(f); err != nil {
		return nil, crerr.Wrapf(err, "read %s", file.RelPath())
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
