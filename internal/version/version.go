package version

const APP = "stationeye"

// Overridden at build time with -ldflags "-X stationeye/internal/version.VERSION=..."
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
