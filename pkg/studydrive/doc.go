// Package studydrive implements the client side of the Studydrive
// mobile-app gateway protocol: the authentication handshake, the
// rate-limit-aware request wrapper, the paginated course feed, and the
// signed download-link resolution with format fallback.
package studydrive
