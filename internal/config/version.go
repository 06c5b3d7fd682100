package config

// Version is the batchmates binary version.
// Set at build time via: -ldflags "-X github.com/batchmates/batchmates/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
