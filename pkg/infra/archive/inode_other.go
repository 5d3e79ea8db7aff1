//go:build !unix

package archive

import "io/fs"

// inodeOf reports no link identity where the platform does not expose inodes
func inodeOf(fs.FileInfo) (inode, bool) {
	return inode{}, false
}
