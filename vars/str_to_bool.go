package vars

import "strings"

// StrToBool parses command line booleans. Unknown strings are false.
func StrToBool(str string) bool {
	str = strings.ToLower(str)
	switch str {
	case "true", "t", "yes", "y", "on", "1":
		return true
	case "false", "f", "no", "n", "off", "0":
		return false
	}
	return false
}
