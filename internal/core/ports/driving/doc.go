// Package driving defines the inbound ports of the scout core: the service
// interfaces the CLI (or any other driving adapter) calls into.
package driving
