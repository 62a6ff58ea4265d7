package version

// Version is the catalog build version, set at build time via ldflags:
// go build -ldflags "-X github.com/locallibrary/catalog/pkg/version.Version=1.0.0".
var Version = "dev"
