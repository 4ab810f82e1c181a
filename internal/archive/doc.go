// Package archive extracts native bundles (zip/jar files) into a directory.
package archive
