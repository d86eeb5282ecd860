// Package internal provides information shared by all avltree-go
// packages and executables.
package internal

// Version is the current release version of avltree-go.
const Version = "0.1.0"
