// Package slash declares Discord slash commands as a tree, keeps it comparable
// with what Discord already has registered, and routes incoming interactions
// to the right handler with decoded arguments.
//
// A command tree is built from Specs:
//
//	rate := slash.MustCommand(slash.Spec{Name: "rate", Description: "Rate things", Handler: noop})
//	rate.AddSubcommand(slash.Spec{
//		Description: "Rate a user",
//		Handler:     slash.Bind(cog.User),
//	})
//
// Commands live in a Registry owned by the application. An Engine resolves
// each interaction against the registry, fills and coerces arguments, runs
// the handler and reports slash_command, slash_command_error and
// slash_command_completion events to its listeners.
package slash
