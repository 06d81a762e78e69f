package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/a11yfix/a11yfix/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	".a11yfix":     true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".nuxt":        true,
	"coverage":     true,
}

// FileScanner implements domain.SourceScanner by walking the filesystem.
// Files are returned in lexical walk order, which makes "first file wins"
// deterministic.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

func (s *FileScanner) Scan(root string, opts domain.ScanOptions) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	extraSkip := make(map[string]bool, len(opts.ExcludePaths))
	for _, p := range opts.ExcludePaths {
		extraSkip[filepath.ToSlash(strings.TrimSuffix(p, "/"))] = true
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = domain.DefaultExtensions
	}
	wanted := make(map[string]bool, len(exts))
	for _, e := range exts {
		wanted[strings.ToLower(e)] = true
	}

	result := &domain.ScanResult{RootPath: absPath}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, path)
		slashRel := filepath.ToSlash(relPath)

		if d.IsDir() {
			if path == absPath {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[slashRel] {
				return filepath.SkipDir
			}
			return nil
		}

		if extraSkip[slashRel] || !wanted[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		if opts.MaxFileBytes > 0 {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if info.Size() > opts.MaxFileBytes {
				result.Skipped = append(result.Skipped, relPath)
				return nil
			}
		}

		result.Files = append(result.Files, relPath)
		return nil
	})

	return result, err
}
