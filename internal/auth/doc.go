// Package auth provides account management and authentication.
//
// It covers three concerns:
//
//   - Credential handling: bcrypt password hashing and verification
//     (password.go). Hashes are salted per call, so hashing the same
//     password twice yields different digests.
//   - The account service (service.go): signup, login, logout and the
//     process-local Session holding the current identity (session.go).
//   - The HTTP session layer (sessions.go): cookie sessions backed by
//     the sqlite session store, plus CSRF protection and the request
//     authentication middleware.
//
// # Usage
//
// Initialize in entrypoint:
//
//	svc := auth.NewService(usersRepo, cfg.Auth)
//	sm, err := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sm.SessionLoadSave(), auth.RequireSession(sm))
//
// Handlers read the authenticated identity from the request:
//
//	userID := sm.GetUserID(c.Request)
package auth
