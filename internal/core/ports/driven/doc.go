// Package driven defines the outbound ports of the scout core: the
// interfaces the services depend on for discovery providers, contact and run
// persistence, and scoring-weight supply. Adapters under internal/adapters
// and internal/providers implement them.
package driven
