// Command arpa-exporter runs the ARPA export worker and its operator
// utilities.
//
// The run command long-polls the task queue until SIGINT or SIGTERM. The
// remaining commands handle a single task, inspect manifests, preview the
// notification email, run preflight checks, and manage the configuration
// file.
package main
