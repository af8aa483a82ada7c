package runner

import (
	"fmt"
	"regexp"
)

// assetErrorPattern matches spec error messages of the shape
// "<msg> in http://host/assets/<spec>?body=<n> (line <n>)" produced when
// the harness serves specs through an asset pipeline.
var assetErrorPattern = regexp.MustCompile(`(.*?) in http.+?assets/(.*)\?body=\d+\s\((line\s\d+)`)

// CleanErrorMessage strips asset pipeline noise from a spec error message.
// The short form keeps only the message itself; the long form keeps the
// spec file and line. Messages of any other shape pass through unchanged.
func CleanErrorMessage(message string, short bool) string {
	m := assetErrorPattern.FindStringSubmatch(message)
	if m == nil {
		return message
	}
	if short {
		return m[1]
	}
	return fmt.Sprintf("%s in %s on %s", m[1], m[2], m[3])
}
