// Package runlogs catalogs the per-run log files written by the sync job.
//
// Every run appends to sptnr_<unix-seconds>.log in the log directory and, on
// success, ends with the completion report. List parses that report from each
// file's last line; Open and Resolve serve single files with a containment
// check; Tail reads or follows the end of a file.
package runlogs
