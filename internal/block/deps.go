package block

import (
	"regexp"
	"strings"
)

var importFromRe = regexp.MustCompile(`import\s+[^;'"]*?\s+from\s+['"]([^'"]+)['"]`)

// ParseDependencies returns the distinct external packages imported by code.
// Relative and absolute paths are skipped; scoped packages keep "@scope/name".
func ParseDependencies(code string) []string {
	seen := make(map[string]bool)
	deps := make([]string, 0)
	for _, m := range importFromRe.FindAllStringSubmatch(code, -1) {
		path := m[1]
		if strings.HasPrefix(path, ".") || strings.HasPrefix(path, "/") {
			continue
		}
		segments := strings.Split(path, "/")
		pkg := segments[0]
		if strings.HasPrefix(path, "@") && len(segments) >= 2 {
			pkg = segments[0] + "/" + segments[1]
		}
		if !seen[pkg] {
			seen[pkg] = true
			deps = append(deps, pkg)
		}
	}
	return deps
}
