// Package platform describes the operating system and CPU architecture an
// installation is staged for.
//
// Platform is an explicit value: rule evaluation, runtime selection and
// classpath joining all take it as a parameter, so any platform can be
// simulated in tests regardless of the host.
package platform
