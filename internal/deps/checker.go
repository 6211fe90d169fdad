// Package deps verifies the external tools and files a build shells out
// to, so a missing wrapper script fails the build before any merge work
// starts instead of halfway through it.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Dependency describes the external requirements of one build step.
type Dependency struct {
	// Name identifies the step, such as "vep" or "liftover:gnomad".
	Name string

	// DisplayName is the human readable tool name used in messages.
	DisplayName string

	// Commands are binaries resolved through PATH. They are alternatives;
	// the first one found satisfies the dependency.
	Commands []string

	// Files are paths that must exist on disk, such as wrapper scripts,
	// chain files, or a FASTA index.
	Files []string
}

// Status reports the outcome of checking a single dependency.
type Status struct {
	// Available is true when a command resolved and every file exists.
	Available bool

	// Path is the resolved binary path when a command was found.
	Path string

	// CheckError explains what is missing when Available is false.
	CheckError error
}

// Check verifies that one of the dependency's commands resolves through
// PATH and that all of its files exist.
func Check(dep Dependency) Status {
	status := Status{Available: true}

	if len(dep.Commands) > 0 {
		status.Available = false
		for _, cmd := range dep.Commands {
			path, err := exec.LookPath(cmd)
			if err != nil {
				// Command not found, try next one
				continue
			}
			status.Available = true
			status.Path = path
			break
		}
		if !status.Available {
			status.CheckError = fmt.Errorf("%s not found in PATH (tried: %s)",
				dep.DisplayName, strings.Join(dep.Commands, ", "))
			return status
		}
	}

	for _, file := range dep.Files {
		if _, err := os.Stat(file); err != nil {
			status.Available = false
			status.CheckError = fmt.Errorf("%s: %s does not exist", dep.DisplayName, file)
			return status
		}
	}

	return status
}

// CheckAll checks every dependency and returns a map of dependency name
// to status.
func CheckAll(deps []Dependency) map[string]Status {
	if len(deps) == 0 {
		return nil
	}
	results := make(map[string]Status, len(deps))
	for _, dep := range deps {
		results[dep.Name] = Check(dep)
	}
	return results
}

// Missing returns the names of unavailable dependencies, sorted.
func Missing(statuses map[string]Status) []string {
	var missing []string
	for name, status := range statuses {
		if !status.Available {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
