// Package loader registers HTTP features with the fiber app.
//
// A feature is anything with a name, an enabled flag and a Load method that
// mounts its routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The start command registers validators, subnets and integrity on a Manager
// and calls LoadAll once the global middleware is in place. LoadAll refuses a
// name registered twice. Features() exposes the registry so the start command
// can also hand the scheduler to features that own periodic jobs.
package loader
