// Package security holds the HTTP hardening middleware: CSRF protection for
// forms and client-side requests, response security headers, and the
// session manager that carries flash messages between a redirect and the
// next page.
package security
