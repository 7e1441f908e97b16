//go:build debug

package instrument

const debugBuild = true
