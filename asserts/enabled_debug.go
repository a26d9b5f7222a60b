//go:build fnvmdebug

package asserts

const Enabled = true
