package hub

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/russross/blackfriday/v2"
)

const marker = "REPLACE:"

// ReplaceFunc rewrites a line; the line has no trailing newline
type ReplaceFunc func(line string) (string, error)

// MarkerKey returns the key of a REPLACE:<KEY> marker in line, up to the next
// whitespace, and whether the line has one.
func MarkerKey(line string) (key string, idx int, ok bool) {
	idx = strings.Index(line, marker)
	if idx < 0 {
		return "", -1, false
	}
	rest := line[idx+len(marker):]
	if end := strings.IndexFunc(rest, unicode.IsSpace); end >= 0 {
		rest = rest[:end]
	}
	return rest, idx, true
}

// MainReplacer fills the markers of the hub root page
func MainReplacer(langs []Language) ReplaceFunc {
	return func(line string) (string, error) {
		key, idx, ok := MarkerKey(line)
		if !ok {
			return line, nil
		}

		switch key {
		case "LANGUAGES":
			tags := make([]string, len(langs))
			for i, l := range langs {
				tags[i] = l.Tag
			}
			data, err := json.Marshal(tags)
			if err != nil {
				return "", err
			}
			return line[:idx] + " " + string(data), nil
		case "HEADER":
			return "<h1>HEADER COMING EVENTUALLY</h1>", nil
		case "FOOTER":
			return "<footer>FOOTER COMING SOON</footer>", nil
		case "LANGLIST":
			return LanguageList(langs), nil
		}
		return "", fmt.Errorf("unknown replacement key: %s", key)
	}
}

// LanguageList renders the languages as an HTML list of links
func LanguageList(langs []Language) string {
	var md strings.Builder
	for _, l := range langs {
		fmt.Fprintf(&md, "- [%s](%s)\n", l.Name, l.Tag)
	}
	out := blackfriday.Run([]byte(md.String()))
	return strings.TrimRight(string(out), "\n")
}

// CopyWithReplace copies src to dst line by line, passing lines that contain
// a marker through replace. Parent directories of dst are created. It returns
// the number of bytes written.
func CopyWithReplace(src, dst string, replace ReplaceFunc) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	r := bufio.NewReader(in)
	var n int64
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return n, readErr
		}
		if line != "" {
			body, nl := strings.CutSuffix(line, "\n")
			if replace != nil && strings.Contains(body, marker) {
				body, err = replace(body)
				if err != nil {
					return n, fmt.Errorf("%s: %w", src, err)
				}
			}
			if nl {
				body += "\n"
			}
			m, err := w.WriteString(body)
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}
	if err := w.Flush(); err != nil {
		return n, err
	}
	return n, out.Close()
}
