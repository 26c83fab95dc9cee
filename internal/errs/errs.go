// Package errs defines the error shapes the API sends to clients.
//
// Every error leaving the HTTP layer is turned into an HTTPError by the
// global error handler so clients always get the same JSON structure:
//
//	{ "code": "VALIDATION_FAILED", "message": "...", "status": 400, "details": {...} }
package errs
