// Package project holds the errors shared by the workspace packages.
//
// # Sub-packages
//
//   - vfs: read-only file system abstraction (disk and in-memory)
//   - workspace: root folders, file enumeration and text document loading
package project
