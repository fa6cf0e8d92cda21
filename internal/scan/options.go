package scan

import "regexp"

// Options configures the scanning behavior.
type Options struct {
	// Workers is the number of concurrent directory readers.
	Workers int

	// Xdev prevents descending across filesystem boundaries. Mount
	// points are still inserted and flagged, just not read.
	Xdev bool

	// MaxErrors is the maximum number of errors before aborting.
	// Zero means unlimited.
	MaxErrors int

	// ExcludePatterns are regular expressions for paths to skip.
	// Excluded directories are inserted and flagged but not read.
	ExcludePatterns []*regexp.Regexp
}

// DefaultOptions returns sensible defaults for scanning.
func DefaultOptions() *Options {
	opts := &Options{
		Workers:   8,
		Xdev:      true,
		MaxErrors: 0,
	}
	// Exclude NFS snapshot directories by default
	opts.AddExcludePattern(`/\.snapshot(/|$)`)
	return opts
}

// WithWorkers sets the number of workers.
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// WithXdev sets cross-device behavior.
func (o *Options) WithXdev(xdev bool) *Options {
	o.Xdev = xdev
	return o
}

// WithMaxErrors sets the maximum error count.
func (o *Options) WithMaxErrors(n int) *Options {
	o.MaxErrors = n
	return o
}

// AddExcludePattern adds a pattern to exclude.
func (o *Options) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	o.ExcludePatterns = append(o.ExcludePatterns, re)
	return nil
}

// ShouldExclude checks if a path matches any exclude pattern.
func (o *Options) ShouldExclude(path string) bool {
	for _, re := range o.ExcludePatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
