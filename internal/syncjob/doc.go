// Package syncjob implements the popularity-to-rating sync run.
//
// A run resolves its selection (artist IDs, album IDs, or a window over the
// whole artist index), walks each album's tracks, searches the metadata API
// with up to three queries per track, and writes a 0-5 rating back to the
// media server. Finished albums are recorded so later runs skip them unless
// forced. The final log line of a successful run is the Report.
package syncjob
