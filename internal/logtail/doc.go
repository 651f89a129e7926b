// Package logtail reads the end of steward's log file for the activity view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded whatever the file size. Entries decodes each line as a zerolog JSON
// record (level, component, message, time and any extra fields); lines that
// are not JSON, such as a panic trace, come back as plain messages.
package logtail
