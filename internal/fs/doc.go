// Package fs provides the filesystem abstraction behind unit files.
//
//   - [FileSystem] and [File] abstract the os calls the unit manager makes.
//   - [LocalFS] is the production implementation ([Default]).
//   - [FaultyFS] injects read, write, sync and close failures in tests.
//   - [Lock] takes an exclusive advisory lock (flock on unix) so two
//     computations never share a unit file.
//
// Operations take no context.Context: local file calls are short and not
// interruptible at the syscall level.
package fs
