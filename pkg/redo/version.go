package redo

import (
	"fmt"
)

const (
	// VersionMajor represents the current major version.
	VersionMajor = 0
	// VersionMinor represents the current minor version.
	VersionMinor = 6
	// VersionPatch represents the current patch version.
	VersionPatch = 0
)

// Version provides a stringified version of the current version.
var Version string

func init() {
	// Compute the stringified version.
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
