package render

import (
	"path"
	"strings"
)

// languageTags maps file extensions to fenced-code-block language tags.
var languageTags = map[string]string{
	"py":   "python",
	"js":   "javascript",
	"ts":   "typescript",
	"tsx":  "tsx",
	"jsx":  "jsx",
	"json": "json",
	"yml":  "yaml",
	"yaml": "yaml",
	"toml": "toml",
	"ini":  "ini",
	"cfg":  "ini",
	"md":   "markdown",
	"txt":  "",
	"sh":   "bash",
	"zsh":  "bash",
	"ps1":  "powershell",
	"rb":   "ruby",
	"go":   "go",
	"rs":   "rust",
	"java": "java",
	"kt":   "kotlin",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"hpp":  "cpp",
	"cs":   "csharp",
	"php":  "php",
	"sql":  "sql",
	"html": "html",
	"css":  "css",
	"vue":  "vue",
	"sv":   "verilog",
}

// languageTag guesses the fenced-code-block tag for a relative path. Unknown
// extensions yield the empty tag (a plain fence).
func languageTag(relativePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(relativePath), "."))
	return languageTags[ext]
}
