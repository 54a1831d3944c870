// Package commands implements the gatherly CLI.
//
// The root command wires the app once per invocation; subcommands call the
// services through the shared Wire. The vault passphrase (-p) protects local
// credentials and is distinct from the account password, which only login
// and register ever see.
package commands
