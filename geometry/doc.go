// Package geometry describes the raw data that meshes hand to a backend:
// byte payloads, vertex layouts and primitive groups.
//
// Nothing in this package talks to a GPU. The gputypes conversions in
// convert.go are what the native backend uses to build pipeline descriptors.
package geometry
