// Package preflight runs startup checks: directory access, free disk space,
// provider reachability, and external binary availability.
package preflight
