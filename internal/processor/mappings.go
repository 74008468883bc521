package processor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/edi-codec/internal/translate"
	"github.com/ginjaninja78/edi-codec/internal/xlsxparser"
)

// LoadMappings extends the built-in rule set with every mapping file in dir.
// YAML files (.yaml, .yml) and XLSX workbooks (.xlsx) are read in name order;
// files starting with "_" or "~$" are skipped. A missing dir yields the
// built-in rules.
//
// RETURNS:
//   - The rule set, safe to share between workers.
//   - The number of files loaded.
//   - An error naming the first file that could not be loaded.
func LoadMappings(fs afero.Fs, dir string) (*translate.RuleSet, int, error) {
	rules := translate.Builtin().Clone()
	if dir == "" {
		return rules, 0, nil
	}
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check mapping directory: %w", err)
	}
	if !exists {
		return rules, 0, nil
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read mapping directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	loaded := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || strings.HasPrefix(name, "~$") {
			continue
		}
		path := filepath.Join(dir, name)

		var files []*translate.MappingFile
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			files, err = loadYAMLMapping(fs, path)
		case ".xlsx":
			files, err = loadWorkbookMapping(fs, path)
		default:
			continue
		}
		if err != nil {
			return nil, loaded, fmt.Errorf("failed to load mapping %s: %w", name, err)
		}
		for _, mf := range files {
			if err := mf.Apply(rules); err != nil {
				return nil, loaded, fmt.Errorf("invalid mapping %s: %w", name, err)
			}
		}
		loaded++
	}
	return rules, loaded, nil
}

func loadYAMLMapping(fs afero.Fs, path string) ([]*translate.MappingFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mf, err := translate.ParseMappingFile(f)
	if err != nil {
		return nil, err
	}
	return []*translate.MappingFile{mf}, nil
}

func loadWorkbookMapping(fs afero.Fs, path string) ([]*translate.MappingFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xlsxparser.ParseReader(f)
}
