package fixture

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/raffleverify/internal/fetch"
)

//go:embed schema.cue
var schemaSource string

// Expected error kinds.
const (
	ErrorInvalidSeed     = "invalid_seed"
	ErrorEmptyCandidates = "empty_candidates"
)

// Fixture is one pinned selection.
type Fixture struct {
	// Name uniquely identifies the fixture and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Hash is the block hash hex the seed starts from.
	Hash string `yaml:"hash"`

	// Roll is the roll token. Empty means the default token.
	Roll string `yaml:"roll,omitempty"`

	// Candidates is the inline candidate list.
	Candidates []string `yaml:"candidates,omitempty"`

	// CandidatesFile is a text file with one candidate per line, relative to
	// the fixture file.
	CandidatesFile string `yaml:"candidates_file,omitempty"`

	// Expect is the expected outcome. Nil only records the result.
	Expect *Expect `yaml:"expect,omitempty"`

	// Path is the file the fixture was loaded from.
	Path string `yaml:"-"`
}

// Expect specifies the expected outcome of a fixture.
type Expect struct {
	Index   *int    `yaml:"index,omitempty"`
	Element *string `yaml:"element,omitempty"`
	Error   string  `yaml:"error,omitempty"`
}

// Load reads, schema-checks, and decodes a fixture file. Relative
// candidates_file paths are resolved against the fixture's directory.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.Path = path
	if f.CandidatesFile != "" && !filepath.IsAbs(f.CandidatesFile) {
		f.CandidatesFile = filepath.Join(filepath.Dir(path), f.CandidatesFile)
	}
	return f, nil
}

// Parse schema-checks and decodes fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	fixtures := make([]*Fixture, 0, len(paths))
	seen := map[string]string{}
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("duplicate fixture name %q in %s and %s", f.Name, prev, p)
		}
		seen[f.Name] = p
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// CandidateList returns the inline candidates or the lines of
// CandidatesFile.
func (f *Fixture) CandidateList() ([]string, error) {
	if f.CandidatesFile == "" {
		return f.Candidates, nil
	}
	data, err := os.ReadFile(f.CandidatesFile)
	if err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}
	return fetch.Lines(data), nil
}

func validate(f *Fixture) error {
	if f.Candidates != nil && f.CandidatesFile != "" {
		return fmt.Errorf("candidates and candidates_file are mutually exclusive")
	}
	if f.Expect != nil && f.Expect.Error != "" && (f.Expect.Index != nil || f.Expect.Element != nil) {
		return fmt.Errorf("expect.error cannot be combined with index or element")
	}
	return nil
}

// checkSchema validates raw YAML against the embedded #Fixture definition.
func checkSchema(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("fixture is empty")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile fixture schema: %w", err)
	}

	value := ctx.Encode(raw)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Fixture")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}
