// Package installer stages a runnable installation of a catalog release.
//
// The pipeline runs strictly in order: catalog → descriptor → libraries →
// assets → client archive → runtime image → classpath. Inside the library,
// asset and runtime phases independent downloads run on a bounded worker
// pool; the first failure cancels the phase and aborts the install.
package installer
