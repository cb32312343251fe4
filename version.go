package drover

// Version is the semantic version of the drover library. Binaries built from
// cmd/ stamp their own version via linker flags; this constant is for
// embedding applications that report the library version.
const Version = "v0.1.0"
