// Package cli is the ledgerchat command tree. Every command builds a fresh
// session (store, mirror, query client and API service) from the environment,
// runs it against the API and prints the outcome as JSON or YAML.
package cli
