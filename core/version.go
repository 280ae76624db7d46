package core

import (
	"go.uber.org/zap"
)

// Version is the engine version reported in logs. It is resolved from
// the build flag first, then the conf, then falls back to NoVersion.
var Version string

const NoVersion = "no_version_info"

func SetVersion(c *Conf, versionByBuildFlag string) {
	switch {
	case versionByBuildFlag != "":
		Version = versionByBuildFlag
	case c.Version != "":
		Version = c.Version
	default:
		Version = NoVersion
	}
	zap.L().Info("engine version", zap.String("version", Version))
}
