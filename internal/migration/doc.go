// Package migration coordinates a reorganization run. Plan resolves the source
// folders, reads them and groups their items into capacity-bounded chunks without
// touching remote state. Execute creates one folder per chunk and moves the items
// into it, recording per-item failures instead of aborting.
package migration
