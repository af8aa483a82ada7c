package runner

import (
	"bufio"
	"net/url"
	"os"
	"regexp"
)

// suitePattern matches the first test-suite declaration in a spec source
// file and captures the suite name. It covers the describe("name",
// describe('name' and the paren-less describe 'name' call forms.
var suitePattern = regexp.MustCompile(`describe\s*[("']+(.*?)["')]+`)

// BuildQuery derives the suite-filter query fragment for a target. The
// spec directory itself is the "run everything" sentinel and gets no
// fragment. Any other target is scanned line by line for its first suite
// declaration; the suite name becomes a ?spec= filter so the harness only
// runs that suite. This is a best-effort scan, never an error: unreadable
// or declaration-less files yield no fragment and the full suite runs.
func BuildQuery(target, specDir string) string {
	if target == specDir {
		return ""
	}

	f, err := os.Open(target)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := suitePattern.FindStringSubmatch(scanner.Text()); m != nil {
			return "?spec=" + url.QueryEscape(m[1])
		}
	}
	return ""
}
