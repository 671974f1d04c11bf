// Package favorites defines the data shared by the reorganizer packages: source
// folders, the saved items read out of them, and the paginated item pages
// returned by the remote listing endpoint.
package favorites
