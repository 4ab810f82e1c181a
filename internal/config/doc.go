// Package config defines craftstage settings and provides helpers to load,
// validate and save them in YAML format.
//
// Every field has a default pointing at the public upstream hosts, so a
// missing configuration file is not an error.
package config
