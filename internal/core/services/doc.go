// Package services implements the application core of the warm-intro scout:
// the provider chain orchestrator with its run state machine, the
// connector-path builder, and the learning subsystem that versions scoring
// weights. Services depend only on domain types and the ports.
package services
