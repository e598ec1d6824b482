// Package lookup serves the reference data behind cascading address selects
// and the license search box: provinces, districts, communes, villages and
// licenses, returned as bare JSON arrays.
//
// The handlers respond to GET and HEAD only. Filtered endpoints return an
// empty array when the filter parameter is missing or shorter than two
// characters. Each answered request waits a configurable delay (300ms by
// default) that is cut short when the request context ends. The backing data
// comes from a Store; the default is an in-memory store over the embedded
// data/fixtures.json.
package lookup
