// Package backend is the HTTP client for the admin REST API.
//
// Every list endpoint answers GET /api/<resource>?page=&limit=&sortBy=&
// sortOrder=&search=&<filters> with
//
//	{"items": [...], "pagination": {"totalItems": n, "totalPages": n, "currentPage": n}}
//
// List decodes one page into Page[T]; ListAll drains a collection for screens
// that page locally and for exports. Requests carry Accept, User-Agent, an
// optional bearer token and a fresh X-Request-ID so a request can be found in
// the server's logs.
//
// Errors responses come back as *StatusError; callers use errors.As to show
// the status and the server's message. Money fields decode into
// decimal.Decimal from either JSON strings or numbers.
package backend
