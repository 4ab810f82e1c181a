// Package version describes the running craftstage build: the release number,
// the commit and build time stamped in by the linker, and the User-Agent sent
// upstream.
package version
