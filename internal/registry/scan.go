package registry

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/config"
)

// SourceExtension is the only file extension the registry enumerates
// (§6 "Package roots... source files matched by an extension (.ax)").
const SourceExtension = ".ax"

// ScannedPath is one file found during root enumeration.
type ScannedPath struct {
	Path         string
	PackageName  string
	LastEditTime time.Time
}

// ScanRoots recursively enumerates every root directory for .ax files,
// skipping paths matching any exclude glob or the root's .gitignore.
// Symlink-cycle detection and the recursive-walk shape are grounded on the
// teacher's internal/indexing/pipeline.go ScanDirectory/CountFiles; glob
// matching reuses doublestar the same way the teacher's watcher.go does;
// .gitignore handling reuses the teacher's internal/config.GitignoreParser
// (§6: "Enumeration is recursive, gitignore-aware").
//
// packageOf maps a root directory to the Alchemy package name declared for
// files under it (§6: "File identity is the absolute path string", package
// identity is a configuration concern, §4.O).
func ScanRoots(roots []string, packageOf map[string]string, excludes []string) ([]ScannedPath, error) {
	var out []ScannedPath
	for _, root := range roots {
		pkg := packageOf[root]
		visitedDirs := make(map[string]bool)

		gi := config.NewGitignoreParser()
		_ = gi.LoadGitignore(root) // absent .gitignore just leaves gi empty

		err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return nil // keep scanning; a single unreadable entry shouldn't abort the run
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}

			if info.IsDir() {
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil
				}
				if visitedDirs[real] {
					return filepath.SkipDir
				}
				visitedDirs[real] = true

				if path != root && (matchesAny(root, path, excludes) || gi.ShouldIgnore(rel, true)) {
					return filepath.SkipDir
				}
				return nil
			}

			if filepath.Ext(path) != SourceExtension {
				return nil
			}
			if matchesAny(root, path, excludes) || gi.ShouldIgnore(rel, false) {
				return nil
			}

			out = append(out, ScannedPath{
				Path:         path,
				PackageName:  pkg,
				LastEditTime: info.ModTime(),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func matchesAny(root, path string, excludes []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
