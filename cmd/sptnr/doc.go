// Package main hosts the sptnr command: the popularity-to-rating sync job
// and its helper subcommands.
//
// Running sptnr with no subcommand performs a sync. Each run writes its own
// log file, prints the completion report to stdout, and exits non-zero when
// the run aborts. The runs subcommand reads those log files back, and config
// scaffolds and checks the configuration.
package main
