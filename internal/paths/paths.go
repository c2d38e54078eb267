// Package paths builds the deterministic FIFO paths used by pipe-mode
// channels. A channel's pipes live in one directory and are numbered:
// <channel_directory>/<channel>_<index>.
package paths

import (
	"strconv"
	"strings"
)

// PipePath returns the path of the index-th pipe for a channel. Exactly one
// separator is inserted between the directory and the pipe name, whether or
// not channelDir carries a trailing slash.
func PipePath(channelDir, channel string, index uint32) string {
	if !strings.HasSuffix(channelDir, "/") {
		channelDir += "/"
	}
	return channelDir + channel + "_" + strconv.FormatUint(uint64(index), 10)
}
