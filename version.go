package extbuild

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

// Default macro names of the brotli version header.
const (
	VersionMajorMacro = "BROTLI_VERSION_MAJOR"
	VersionMinorMacro = "BROTLI_VERSION_MINOR"
	VersionPatchMacro = "BROTLI_VERSION_PATCH"
)

// VersionTriple holds the raw macro values read from a version header.
// Values are opaque text; no numeric validation is performed.
type VersionTriple struct {
	Major string
	Minor string
	Patch string
}

// String joins the triple with dots, or returns "" when any part is missing.
func (v VersionTriple) String() string {
	if v.Major == "" || v.Minor == "" || v.Patch == "" {
		return ""
	}
	return v.Major + "." + v.Minor + "." + v.Patch
}

// ExtractVersion reads the three macros from the header at headerPath and
// returns "<major>.<minor>.<patch>". If any macro is absent the empty string
// is returned, which callers must treat as "unknown version".
//
// The header is read in a single pass. A missing or unreadable header is a
// *VersionHeaderError.
func ExtractVersion(headerPath, majorMacro, minorMacro, patchMacro string) (string, error) {
	values, err := readDefines(headerPath, majorMacro, minorMacro, patchMacro)
	if err != nil {
		return "", err
	}
	triple := VersionTriple{
		Major: values[majorMacro],
		Minor: values[minorMacro],
		Patch: values[patchMacro],
	}
	return triple.String(), nil
}

// ReadDefine returns the value of a single macro, or "" when the header has
// no matching #define line.
func ReadDefine(headerPath, macro string) (string, error) {
	values, err := readDefines(headerPath, macro)
	if err != nil {
		return "", err
	}
	return values[macro], nil
}

func readDefines(headerPath string, macros ...string) (map[string]string, error) {
	f, err := os.Open(headerPath)
	if err != nil {
		return nil, &VersionHeaderError{Path: headerPath, Err: err}
	}
	defer f.Close()

	patterns := make(map[string]*regexp.Regexp, len(macros))
	for _, macro := range macros {
		patterns[macro] = defineRegexp(macro)
	}

	values := make(map[string]string, len(macros))
	r := bufio.NewReader(f)
	for len(values) < len(patterns) {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, &VersionHeaderError{Path: headerPath, Err: err}
		}
		if strings.HasPrefix(line, "#define") {
			line = strings.TrimRight(line, "\r\n")
			for macro, re := range patterns {
				if _, found := values[macro]; found {
					continue
				}
				if m := re.FindStringSubmatch(line); m != nil {
					values[macro] = m[1]
				}
			}
		}
		if err == io.EOF {
			break
		}
	}

	return values, nil
}

func defineRegexp(macro string) *regexp.Regexp {
	return regexp.MustCompile(`^#define\s` + regexp.QuoteMeta(macro) + `\s+(.+)`)
}
