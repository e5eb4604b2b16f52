// Package fsinput resolves the CLI's input globs into ingest.Inputs. A
// billy.Filesystem sits between the glob expansion and the real
// filesystem so tests can swap in memfs instead of touching disk.
package fsinput

import (
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/ingest"
)

// NewOSFilesystem returns a billy.Filesystem rooted at dir, the
// production backend for Resolve.
func NewOSFilesystem(dir string) billy.Filesystem {
	return osfs.New(dir)
}

// Resolve expands every glob pattern against fs, in order, and reads
// each matched file (once, even if matched by more than one pattern)
// into an ingest.Input. A per-file open/read failure is InputIO-class —
// non-fatal, per spec §7: it's reported via onError and that file is
// skipped. A glob expansion failure (a malformed pattern) is fatal,
// since it means the CLI invocation itself is wrong.
func Resolve(fs billy.Filesystem, patterns []string, onError func(path string, err error)) ([]ingest.Input, error) {
	var inputs []ingest.Input
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := util.Glob(fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: expanding glob %q: %v", errs.ErrInputIO, pattern, err)
		}
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true

			data, err := readFile(fs, path)
			if err != nil {
				onError(path, fmt.Errorf("%w: reading %s: %v", errs.ErrInputIO, path, err))
				continue
			}
			inputs = append(inputs, ingest.Input{Name: path, Data: data})
		}
	}
	return inputs, nil
}

func readFile(fs billy.Filesystem, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
