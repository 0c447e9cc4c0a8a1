// Package scanner decides which files are worth indexing and walks directory
// trees to find them. It prunes dependency and build directories, skips hidden
// files and only accepts a fixed set of source and text extensions.
package scanner

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultExtensions is the allow-list of indexable file extensions, including the dot.
var DefaultExtensions = []string{
	".rs", ".py", ".js", ".ts", ".jsx", ".tsx", ".go", ".java",
	".c", ".cpp", ".cc", ".cxx", ".h", ".hpp",
	".md", ".toml", ".json", ".yaml", ".yml", ".txt",
}

// DefaultSkipDirs lists directory names that are never descended into.
var DefaultSkipDirs = []string{
	".git",
	"node_modules",
	"target",
	"__pycache__",
	"dist",
	"build",
	".next",
	".venv",
	"venv",
	"vendor",
}

// languageMap maps file extensions to programming languages.
var languageMap = map[string]string{
	// Go
	".go": "go",

	// JavaScript/TypeScript
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",

	// Python
	".py":  "python",
	".pyw": "python",
	".pyi": "python",

	// Data/Config
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".xml":  "xml",
	".ini":  "ini",

	// Documentation
	".md":       "markdown",
	".mdx":      "markdown",
	".markdown": "markdown",
	".rst":      "rst",
	".txt":      "text",

	// Shell
	".sh":   "shell",
	".bash": "shell",
	".zsh":  "shell",

	// Ruby
	".rb": "ruby",

	// Rust
	".rs": "rust",

	// Java/Kotlin
	".java": "java",
	".kt":   "kotlin",
	".kts":  "kotlin",

	// C/C++
	".c":   "c",
	".h":   "c",
	".cpp": "cpp",
	".hpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",

	// C#
	".cs": "csharp",

	// Swift
	".swift": "swift",

	// PHP
	".php": "php",

	// SQL
	".sql": "sql",

	// Docker
	"Dockerfile": "dockerfile",

	// Makefile
	"Makefile":    "makefile",
	"makefile":    "makefile",
	"GNUmakefile": "makefile",
}

// DetectLanguage detects the programming language from a file path.
// It returns "" when the path is not recognized.
func DetectLanguage(path string) string {
	// Exact filename matches first (Dockerfile, Makefile, etc.)
	if lang, ok := languageMap[baseName(path)]; ok {
		return lang
	}
	if lang, ok := languageMap[extension(path)]; ok {
		return lang
	}
	return ""
}

// baseName returns the file name from a path.
func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

// extension returns the file extension from a path (including the dot).
// A leading dot on the file name does not start an extension.
func extension(path string) string {
	base := baseName(path)
	for i := len(base) - 1; i > 0; i-- {
		if base[i] == '.' {
			return base[i:]
		}
	}
	return ""
}
