// Package credentials resolves the platform session cookie, the CSRF token and
// the owner identifier from the process environment, a dotenv file, or a file
// holding a raw Cookie header.
package credentials
