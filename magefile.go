//go:build mage
// +build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the server binary.
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/server", "./cmd/server")
}

// Test runs the whole test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Run builds and starts the server.
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./bin/server")
}
