package version

// Version is set at build time:
// -ldflags "-X github.com/rxtech-lab/argo-quant/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "main"

// GetVersion returns the build version.
func GetVersion() string {
	return Version
}
