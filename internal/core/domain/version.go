package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`^(\d+)(\.(\d+))?(\.(\d+))?(.*)?`)

// VersionKey returns a form of version that sorts by semantic version under plain
// string comparison. Each numeric component is zero padded to five digits and any
// trailing suffix is appended verbatim, so "1.2.3-beta1" becomes
// "00001.00002.00003-beta1". Versions that do not start with a number are returned
// unchanged.
func VersionKey(version string) string {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return version
	}
	return fmt.Sprintf("%05d.%05d.%05d%s", component(m[1]), component(m[3]), component(m[5]), m[6])
}

func component(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Only reachable on overflow.
		return 0
	}
	return n
}
