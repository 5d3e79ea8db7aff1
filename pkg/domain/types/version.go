package types

// Version is the armtoolchain version. Overwritten at build time by -ldflags.
var Version = "dev"
