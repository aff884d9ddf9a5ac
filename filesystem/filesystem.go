// Package filesystem provides a swappable afero backend for every filesystem access made by marquee.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a volatile in-memory backend. Tests call it from init().
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}
