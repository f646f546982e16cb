// Package preflight provides readiness checks for the filesystem paths and
// settings the export worker depends on.
//
// The daemon runs RunAll before it starts polling and refuses to start when
// any check fails. The CLI "preflight" command prints the same results as a
// table. Email checks are skipped when email delivery is disabled.
package preflight
