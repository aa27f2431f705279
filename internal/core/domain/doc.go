// Package domain defines the core business entities for the warm-intro scout.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ScoutRequest: A caller's request to discover targets at a company
//   - DiscoveredTarget: A person a provider believes works at the company
//   - ScoutRun: One bounded discovery-and-scoring run with its outcome
//   - ConnectorPath: A scored (target, connector) introduction route
//   - ScoringWeights: The injected weight profile behind path scoring
//
// Alongside the types it carries the pure algorithms of the pipeline: target
// normalisation, ask-type classification, connector-path scoring with its
// guardrails, and weight-profile maths. All of it is deterministic given its
// inputs; nothing here performs I/O.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
