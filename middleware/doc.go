// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Middleware

  - WithLogging: logs request start/completion with duration
  - CORS: allows cross-origin requests and handles preflight

# Helpers

  - JSONResponse: writes a JSON body with a status code
  - ErrorResponse: writes a models.ErrorResponse
  - ParseJSONBody: decodes a JSON request body
  - GetClientIP: extracts the client IP behind proxies

Handlers use these directly:

	var req models.CreateVotingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
