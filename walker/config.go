package walker

import (
	"fmt"

	"github.com/sderose/powerwalk/classifier"
	"github.com/sderose/powerwalk/filter"
)

// LinkDisposition selects how symbolic links and weblink pointer files
// are treated.
type LinkDisposition int

const (
	LinkIgnore LinkDisposition = iota
	LinkReturn
	LinkFollow
)

// DirGrouping selects whether a directory's children are sorted as one
// list or partitioned into directories and files first.
type DirGrouping int

const (
	GroupMixed DirGrouping = iota
	GroupDirsFirst
	GroupFilesFirst
)

// Config is read, never mutated, during a traversal. Zero value plus
// NewConfig defaults mirror the historical behavior: non-recursive, no
// hidden files, no backups, no container events, 100% sampling.
type Config struct {
	// matching controls, regex syntax
	IncludeNames      string
	ExcludeNames      string
	IncludePaths      string
	ExcludePaths      string
	IncludeExtensions string
	ExcludeExtensions string
	IncludeKinds      string
	ExcludeKinds      string
	IncludeDirs       string
	ExcludeDirs       string

	Permissions      string
	Types            string
	MinDepth         int
	MaxDepth         int
	MinSize          int64
	MaxSize          int64
	SamplePercentage float64
	RequireXattr     string

	// behavior controls
	Recursive  bool
	Hidden     bool
	Backups    bool
	Containers bool
	Ignorables bool
	Errors     bool
	Signals    bool

	OnSymlink LinkDisposition
	OnWeblink LinkDisposition

	OpenTar  bool
	OpenGzip bool
	OpenLz4  bool

	Sort        string
	Reverse     bool
	DirGrouping DirGrouping

	MaxLeaves     uint64
	AbsolutePaths bool

	// reading controls. Encoding and Mode record how the caller
	// intends to read the handles it receives; the engine itself
	// always opens raw bytes and never decodes.
	Encoding  string
	Mode      string
	AutoOpen  bool
	AutoClose bool

	// classifier backend consulted by the kind filters
	Classifier string
}

func NewConfig() *Config {
	return &Config{
		SamplePercentage: 100,
		Encoding:         "utf-8",
		Mode:             "rb",
		Classifier:       "mime",
	}
}

func validDisposition(d LinkDisposition) bool {
	return d == LinkIgnore || d == LinkReturn || d == LinkFollow
}

// compile validates the configuration and builds the filter; any failure
// here is fatal before traversal output is produced.
func (c *Config) compile() (*filter.Filter, *classifier.Classifier, error) {
	if c.SamplePercentage < 0 || c.SamplePercentage > 100 {
		return nil, nil, fmt.Errorf("sample percentage %v out of range", c.SamplePercentage)
	}
	if !validSortKey(c.Sort) {
		return nil, nil, fmt.Errorf("unknown sort key %q", c.Sort)
	}
	if !validDisposition(c.OnSymlink) || !validDisposition(c.OnWeblink) {
		return nil, nil, fmt.Errorf("unknown link disposition")
	}
	if c.MinDepth < 0 || c.MaxDepth < 0 {
		return nil, nil, fmt.Errorf("depth bounds may not be negative")
	}

	var cf *classifier.Classifier
	var describe func(string) string
	if c.IncludeKinds != "" || c.ExcludeKinds != "" {
		name := c.Classifier
		if name == "" {
			name = "mime"
		}
		var err error
		cf, err = classifier.NewClassifier(name)
		if err != nil {
			return nil, nil, err
		}
		describe = cf.Describe
	}

	f, err := filter.Compile(filter.Options{
		Types:             c.Types,
		Permissions:       c.Permissions,
		MinDepth:          c.MinDepth,
		Hidden:            c.Hidden,
		Backups:           c.Backups,
		MinSize:           c.MinSize,
		MaxSize:           c.MaxSize,
		ExcludeExtensions: c.ExcludeExtensions,
		IncludeExtensions: c.IncludeExtensions,
		ExcludeKinds:      c.ExcludeKinds,
		IncludeKinds:      c.IncludeKinds,
		ExcludeNames:      c.ExcludeNames,
		IncludeNames:      c.IncludeNames,
		ExcludePaths:      c.ExcludePaths,
		IncludePaths:      c.IncludePaths,
		ExcludeDirs:       c.ExcludeDirs,
		IncludeDirs:       c.IncludeDirs,
		RequireXattr:      c.RequireXattr,
		Describe:          describe,
	})
	if err != nil {
		if cf != nil {
			cf.Close()
		}
		return nil, nil, err
	}
	return f, cf, nil
}
