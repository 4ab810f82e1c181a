// Package fetch retrieves raw bytes over HTTP.
//
// HTTPFetcher shares one http.Client, and therefore one connection pool,
// across every download of an install.
package fetch
