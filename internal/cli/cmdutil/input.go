package cmdutil

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aryankumar/esadmin/internal/util"
)

// ReadJSON returns a JSON body given inline or as a file path. At most one
// source may be set; both empty returns nil. "-" reads the file from in.
func ReadJSON(field, inline, path string, in io.Reader) ([]byte, error) {
	if inline != "" && path != "" {
		return nil, util.NewValidationError(field, nil, "give the body inline or as a file, not both")
	}

	var body []byte
	switch {
	case inline != "":
		body = []byte(inline)
	case path == "-":
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		body = b
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		body = b
	default:
		return nil, nil
	}

	if !json.Valid(body) {
		return nil, util.NewValidationError(field, nil, "not valid JSON")
	}
	return body, nil
}

// ParseParams converts key=value pairs into script params. Values that parse
// as JSON (numbers, booleans, arrays, objects) keep their type; everything
// else is a string.
func ParseParams(pairs map[string]string) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	params := make(map[string]any, len(pairs))
	for key, raw := range pairs {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil && raw != "" {
			params[key] = v
			continue
		}
		params[key] = raw
	}
	return params
}

// Confirm prints prompt and reads a yes/no answer. Anything but y or yes is no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// documentExtensions are the file types read by CollectFiles
var documentExtensions = map[string]bool{
	".json":   true,
	".ndjson": true,
	".jsonl":  true,
}

// CollectFiles returns path itself when it is a file, or the JSON files in it
// when it is a directory. Subdirectories are walked only when recursive.
func CollectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	walkFunc := func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if !documentExtensions[strings.ToLower(filepath.Ext(p))] {
			slog.Debug("skipping file", "path", p)
			return nil
		}
		files = append(files, p)
		return nil
	}
	if err := filepath.WalkDir(path, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
