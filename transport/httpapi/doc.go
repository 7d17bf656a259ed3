// Package httpapi exposes the QR generation service over HTTP.
//
// Routes are mounted on a chi router with request-id, recovery, CORS, and
// structured request logging middleware. Generation endpoints respond as
// soon as the artifact is cached; storage replication runs afterwards on
// the background executor and never delays or fails a request.
package httpapi
