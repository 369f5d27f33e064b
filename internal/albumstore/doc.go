// Package albumstore persists the set of albums a sync run has finished so
// later runs can skip them. Appends are serialized across processes with an
// advisory lock on a sibling ".lock" file.
package albumstore
