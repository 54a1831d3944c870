// Package app wires application dependencies for the CLI.
//
// It loads Config from the environment and builds the credential vault,
// session, API client, and services, exposing them via the Wire struct for
// commands to use.
package app
