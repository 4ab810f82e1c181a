// Package catalog prints the releases published in the remote catalog.
package catalog
