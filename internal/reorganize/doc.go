// Package reorganize exposes the sort command, which regroups favorites
// folders by creator.
//
// The command resolves credentials, plans the reorganization, renders the
// plan, asks for confirmation and only then creates folders and moves items.
// A file lock keeps two runs on one machine from interleaving, and an
// optional YAML report records the outcome.
package reorganize
