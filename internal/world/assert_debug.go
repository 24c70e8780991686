//go:build debug

package world

const debugAssertions = true
