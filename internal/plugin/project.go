// pattern: Functional Core

package plugin

import "slices"

// Marker files whose presence makes a directory a project root.
const (
	PackageManifest = "package.json"
	ProjectManifest = "project.json"
)

// IsValidProject reports whether a directory listing contains a project
// marker. Matching is exact and case-sensitive.
func IsValidProject(siblings []string) bool {
	return slices.Contains(siblings, PackageManifest) || slices.Contains(siblings, ProjectManifest)
}
