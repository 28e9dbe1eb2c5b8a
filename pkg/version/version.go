package version

// Version 在发布构建时可通过 -ldflags "-X" 覆盖
var Version = "0.1.0-dev"
