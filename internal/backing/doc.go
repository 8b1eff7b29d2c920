// File: internal/backing/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Anonymous memory acquisition for pool arenas.
// Linux and Darwin map through golang.org/x/sys/unix so trailing free pages
// can be decommitted with madvise; other platforms use mmap-go.
package backing
