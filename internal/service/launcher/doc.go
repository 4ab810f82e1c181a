// Package launcher starts an installed release with the assembled classpath,
// natives directory and player profile.
package launcher
