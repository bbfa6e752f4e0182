// Package cli implements the interactive terminal front-end of eduterm:
// a small REPL over the session and chat stores. The REPL itself only
// dispatches commands; all behavior lives in the stores and services it
// calls into.
package cli
