// Package app provides the application context for git-context.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # Creating an App
//
//	// Production usage
//	a := app.New(app.WithSettings(settings))
//
//	// Testing with a fake executor
//	a := app.New(app.WithExecutor(system.NewMockExecutor()))
//
// Commands obtain a lifecycle.Manager for the located workspace with
// a.Manager(ws).
package app
