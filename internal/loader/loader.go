// Package loader defines the narrow interface a build-script front end
// implements to populate a project, plus the metadata-attachment helpers
// third-party task types use to stash arbitrary data on a task or project.
// The build-script parser itself is out of scope; this package only carries
// the contract and a trivial adapter fixtures and tests can implement
// directly.
package loader

import "github.com/krakenbuild/kraken/internal/project"

// Loader populates one project by evaluating a build script found under
// dir. Implementations must call project.EnterContext (or otherwise make
// proj's context current) exactly once before evaluating the script, and
// must not mutate proj's parent.
type Loader interface {
	Load(proj *project.Project, dir string) error
}

// FuncLoader adapts a plain function into a Loader.
type FuncLoader func(proj *project.Project, dir string) error

func (f FuncLoader) Load(proj *project.Project, dir string) error { return f(proj, dir) }
