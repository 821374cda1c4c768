// Package http provides HTTP handlers and middleware for the marketplace API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"username","password"}.
//     Response: {"token","expires_at","user"} with the token also surfaced via
//     the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - GET /users, POST /users, GET/PUT /users/{id}, PUT /users/{id}/privacy,
//     PUT /users/{id}/password, GET /users/{id}/registrations,
//     GET /users/{id}/enrollments: account and dashboard endpoints exchanging
//     the `userDTO` payload defined in user_handler.go. Listing returns the
//     resource-person directory; mutations are restricted to the account owner.
//   - GET/POST /events, GET /events/upcoming, GET /events/{id},
//     POST /events/{id}/registrations: event catalog and ticketing endpoints
//     exchanging the `eventDTO` payload defined in event_handler.go.
//   - GET/POST /courses, GET /courses/{id}, POST /courses/{id}/enrollments,
//     PUT /courses/{id}/progress: course catalog and self-paced learning
//     endpoints exchanging the `courseDTO` payload defined in
//     course_handler.go. Authenticated reads include enrollment progress.
//   - GET /cpd/summary, GET/POST /cpd/activities,
//     POST /cpd/activities/{id}/verification: continuing-education credit
//     tracking endpoints defined in cpd_handler.go. Verification is restricted
//     to resource persons.
//   - GET/POST /community/categories, GET/POST /community/discussions,
//     GET/POST /mentorships: forum and mentorship endpoints defined in
//     community_handler.go. Discussion listings accept ?sort=trending|recent.
//   - GET/POST /credentials, GET/PUT/DELETE /credentials/{id}: professional
//     credential records scoped to the authenticated principal, defined in
//     credential_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
