package host

import (
	"fmt"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
	"github.com/bft-labs/hostd/pkg/state"
)

// Version information for the host module.
const (
	// Version is the current version of the host module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// minModuleVersions lists the oldest sub-module versions this host works with.
var minModuleVersions = map[string]string{
	"lifecycle": "2.0.0",
	"log":       "1.1.0",
	"state":     "2.0.0",
}

// ModuleVersions returns the versions of all sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"host":      Version,
		"lifecycle": lifecycle.Version,
		"log":       log.Version,
		"state":     state.Version,
	}
}

// validateModuleVersions checks that every sub-module is at least the
// version this host was written against.
func validateModuleVersions() error {
	versions := ModuleVersions()
	for name, minVersion := range minModuleVersions {
		if !isVersionCompatible(versions[name], minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, versions[name], minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
