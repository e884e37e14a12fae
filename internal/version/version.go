package version

// Version is set at build time via ldflags: -X github.com/Fullex26/hubnotify/internal/version.Version=<tag>
var Version = "dev"
