// Package persist implements the on-disk state directory used by
// `--resume`: content-addressed snapshot files under
// <build_dir>/.kraken/buildenv/, encoded as YAML.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/krakenbuild/kraken/internal/graph"
)

const stateDirName = ".kraken/buildenv"

// StateDir returns the state directory for buildDir, creating it if needed.
func StateDir(buildDir string) (string, error) {
	dir := filepath.Join(buildDir, stateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("persist: creating state directory: %w", err)
	}
	return dir, nil
}

// Load reads every state-*.yaml file in buildDir's state directory and
// decodes it into a graph.Snapshot, in filename order. A missing directory
// yields no snapshots and no error: a first build has nothing to resume.
func Load(buildDir string) ([]graph.Snapshot, error) {
	dir := filepath.Join(buildDir, stateDirName)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persist: reading state directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "state-") && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	snapshots := make([]graph.Snapshot, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("persist: reading %s: %w", name, err)
		}
		var s graph.Snapshot
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("persist: decoding %s: %w", name, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// Save encodes g's current snapshot and writes it under buildDir's state
// directory, named by the content hash of its own bytes, then deletes every
// other state-*.yaml file in that directory: the directory holds exactly
// one snapshot after a successful save.
func Save(buildDir string, g *graph.TaskGraph) error {
	dir, err := StateDir(buildDir)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(g.Export())
	if err != nil {
		return fmt.Errorf("persist: encoding snapshot: %w", err)
	}

	name := "state-" + contentHash(data) + ".yaml"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: writing %s: %w", name, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("persist: reading state directory: %w", err)
	}
	for _, e := range entries {
		if e.Name() == name || e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "state-") && strings.HasSuffix(e.Name(), ".yaml") {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}

// contentHash returns the first 7 hex characters of data's SHA-256 digest.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:7]
}

// Fold merges every loaded snapshot into g (via ResultsFrom, in file order),
// then applies Resume, and Restart when restartAll is set.
func Fold(g *graph.TaskGraph, snapshots []graph.Snapshot, restartAll bool) error {
	for _, s := range snapshots {
		if err := g.ResultsFrom(graph.FromSnapshot(s)); err != nil {
			return err
		}
	}
	g.Resume()
	if restartAll {
		g.Restart()
	}
	return nil
}
