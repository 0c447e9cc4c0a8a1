package symbols

import "regexp"

// Pattern is one entry of the extraction table. The first capture group is the symbol name.
type Pattern struct {
	Name     string
	Category Category
	Regexp   *regexp.Regexp
}

// DefaultPatterns is the extraction table, applied in order to all content.
// Order matters: it decides the first-occurrence order inside each bucket.
var DefaultPatterns = []Pattern{
	{"rust_fn", CategoryFunctions, regexp.MustCompile(`\bfn\s+(\w+)\s*[<(]`)},
	{"rust_struct", CategoryStructs, regexp.MustCompile(`\bstruct\s+(\w+)\s*[<{]`)},
	{"rust_enum", CategoryEnums, regexp.MustCompile(`\benum\s+(\w+)\s*[<{]`)},
	{"rust_trait", CategoryTraits, regexp.MustCompile(`\btrait\s+(\w+)\s*[<{]`)},
	{"rust_impl", CategoryOther, regexp.MustCompile(`\bimpl\s+(?:<[^>]+>\s+)?(\w+)`)},

	{"python_def", CategoryFunctions, regexp.MustCompile(`\bdef\s+(\w+)\s*\(`)},
	{"python_class", CategoryClasses, regexp.MustCompile(`\bclass\s+(\w+)\s*[(:)]`)},

	{"js_function", CategoryFunctions, regexp.MustCompile(`\bfunction\s+(\w+)\s*\(`)},
	{"js_class", CategoryClasses, regexp.MustCompile(`\bclass\s+(\w+)\s*\{`)},
	{"js_const_fn", CategoryFunctions, regexp.MustCompile(`\bconst\s+(\w+)\s*=\s*(?:async\s+)?(?:function|\()`)},

	{"go_func", CategoryFunctions, regexp.MustCompile(`\bfunc\s+(?:\([^)]+\)\s+)?(\w+)\s*\(`)},
	{"go_struct", CategoryStructs, regexp.MustCompile(`\btype\s+(\w+)\s+struct\s*\{`)},
	{"go_interface", CategoryTraits, regexp.MustCompile(`\btype\s+(\w+)\s+interface\s*\{`)},

	{"java_method", CategoryFunctions, regexp.MustCompile(`\b(?:public|private|protected|static|\s)+\w+\s+(\w+)\s*\(`)},
	{"java_class", CategoryClasses, regexp.MustCompile(`\bclass\s+(\w+)\s*[{<]`)},

	{"c_function", CategoryFunctions, regexp.MustCompile(`\b\w+\s+(\w+)\s*\([^)]*\)\s*\{`)},
}
