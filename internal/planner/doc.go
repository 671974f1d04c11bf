// Package planner turns a flat list of favorite items into creator groups and
// capacity-bounded chunks, and names the destination folders for those chunks.
// Every function here is pure.
package planner
