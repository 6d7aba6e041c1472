// Package material describes GPU-bindable appearance state independent of
// any graphics API: shaders, textures, parameters and per-slot colors.
//
// Materials live in a Library arena and are referenced by Handle. A Handle
// to a released material resolves to nil instead of dangling, so meshes and
// render commands can share a material without owning it.
package material
