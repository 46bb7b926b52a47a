// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between clients and the
// curator services, translating HTTP concerns to business operations.
package api
