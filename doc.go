// Package main provides the entry point of oneid, an identity service that
// keeps users, groups, departments and permissions. It serves a REST API built
// on Fiber for login, registration, profile management and token permission
// checks, and persists its data with gorm on MySQL, PostgreSQL or SQLite.
package main
