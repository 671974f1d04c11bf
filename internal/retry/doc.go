// Package retry re-runs fallible remote calls a bounded number of times with a
// linear backoff between attempts and reports every failed attempt to an
// observer.
package retry
