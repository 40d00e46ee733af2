// Command auditsnap files audit screenshots into numbered session folders.
//
// Without a subcommand it runs in the system tray. The watch, session,
// capture, manifest and config subcommands cover headless use.
package main
