package g3d

// Version is the g3d release version.
const Version = "0.1.0"
