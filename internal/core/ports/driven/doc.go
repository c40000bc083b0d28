// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them:
//
//   - TokenStore: persistence of the single token record
//   - CursorStore: persistence of the poll cursor
//   - ResultStore: poll run history
//   - TokenEndpoint: the provider's OAuth token endpoint
//   - HeartRateFetcher: the provider's intraday metric endpoint
//   - Publisher: message-bus delivery
//   - ConfigStore: application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
