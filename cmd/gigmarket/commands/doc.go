// Package commands defines the gigmarket CLI.
//
// Commands
//
//   - nearby   List workers and jobs within a radius of a location
//   - wallet   Show the balance and transaction history
//   - pay      Send money to a worker through a payment provider
//   - chat     List conversations, read one, or send a message
//
// # Implementation
//
// The root command loads configuration and builds a fresh in-memory session
// before any subcommand runs. Nothing is persisted between invocations.
package commands
