/*
Package log provides structured logging for localstor using zerolog.

A single global Logger is configured once at process start with Init. Until
then it discards everything, so library code (the router, the simulated
backend) can log unconditionally and tests stay quiet.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	logger := log.WithComponent("router")
	blog := log.WithBackend(logger, "megaraid")
	blog.Info().Str("target", "megaraid://").Msg("backend activated")

Console output (JSONOutput false) is meant for interactive CLI use; JSON output
is meant for the daemon.

# Fields

	component   subsystem emitting the entry (router, discovery, sim)
	backend     backend identifier (megaraid, hpsa, arcconf, nfs)
	system_id   storage system the entry refers to
*/
package log
