// Package server exposes the task service over HTTP.
//
// Routes:
//
//	GET    /api/todos[?filter=all|active|completed]
//	POST   /api/todos                  {"text": "..."}
//	PATCH  /api/todos/{id}             {"text"?: "...", "completed"?: bool}
//	DELETE /api/todos/{id}
//	POST   /api/todos/clear-completed
//	POST   /api/todos/toggle-all       {"completed": bool}
//
// Errors are returned as {"error": "..."} with status 400 for invalid input,
// 404 for an unknown id and 500 for storage failures. Everything else under /
// is served from the static directory when one is configured.
package server
