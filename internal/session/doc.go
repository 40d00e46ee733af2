// Package session derives audit session folder names from the operator's
// naming fields and tracks the single active session directory.
//
// A session is identified by year, project, audit type and a sequence
// number. Its folder name is "<year>-<project>-<audit_type>-<NNN>" under the
// configured output directory. The Manager owns the active session and
// publishes it through an atomic single-slot reference so the filing
// consumer can read it without coordinating with the control goroutine.
package session
