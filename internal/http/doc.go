// Package http exposes the recruitment portal as a JSON API.
//
// Sessions are carried by the `session_token` cookie or an `Authorization: Bearer`
// header. Public endpoints cover login, logout, registration, password recovery and
// page navigation. Everything under /me acts on the signed-in user; /me resources other
// than the profile and password are for candidates only. Everything under /admin
// requires an administrator.
//
// A principal that still has to rotate a seeded password may only call GET /me,
// PUT /me/password and DELETE /sessions/current until it does.
//
// Errors are answered as {"error_code","message","errors"} where errors maps form
// fields to messages for 422 responses. Binary uploads use multipart/form-data;
// binary downloads stream the stored bytes with their content type.
package http
