// Package logtail reads records back out of the on-disk log file.
//
// Reads are offset based so a follower can resume where the previous call
// stopped. A missing file is treated as empty because the sink only creates
// it once logging is enabled.
package logtail
