package clone

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DetectLanguage returns the programming language implied by a file's
// extension. No processor calls it: File nodes carry no language property.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))

	languageMap := map[string]string{
		".go": "Go", ".py": "Python", ".js": "JavaScript", ".jsx": "JavaScript",
		".ts": "TypeScript", ".tsx": "TypeScript", ".java": "Java", ".c": "C",
		".cpp": "C++", ".cc": "C++", ".cxx": "C++", ".h": "C/C++", ".hpp": "C++",
		".cs": "C#", ".rb": "Ruby", ".php": "PHP", ".rs": "Rust", ".swift": "Swift",
		".kt": "Kotlin", ".scala": "Scala", ".sh": "Shell", ".bash": "Shell",
		".sql": "SQL", ".r": "R", ".m": "Objective-C", ".pl": "Perl", ".lua": "Lua",
		".vim": "Vimscript", ".dart": "Dart", ".ex": "Elixir", ".exs": "Elixir",
		".clj": "Clojure", ".fs": "F#", ".ml": "OCaml", ".hs": "Haskell",
	}

	if lang, ok := languageMap[ext]; ok {
		return lang
	}
	if ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return "unknown"
}

// DetectMIMEType sniffs a file's content-based MIME type by reading its
// leading bytes, the same heuristic net/http uses to set Content-Type on
// static file responses. This has no third-party equivalent in the
// example pack — DetectContentType is the standard, idiomatic tool for
// content-based MIME sniffing in Go, so it stays on the standard library.
func DetectMIMEType(absPath string) (string, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return "application/octet-stream", nil
	}
	return http.DetectContentType(buf[:n]), nil
}
