package usecase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

// multilibs found in the thumb folders of the official arm-none-eabi release
var allThumbArchs = []string{
	"nofp",
	"v6-m",
	"v7",
	"v7-a",
	"v7-a+fp",
	"v7-m",
	"v7-r+fp.sp",
	"v7e-m",
	"v7e-m+dp",
	"v7e-m+fp",
	"v8-m.base",
	"v8-m.main",
	"v8-m.main+dp",
	"v8-m.main+fp",
	"v8.1-m.main+mve",
}

// buildToolchainTree lays out the parts of an extracted toolchain the pruner cares about
func buildToolchainTree(t *testing.T, root, exe string) {
	t.Helper()

	write := func(rel, body string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		gt.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	write("bin/arm-none-eabi-gcc"+exe, "gcc")
	write("bin/arm-none-eabi-lto-dump"+exe, "lto-dump")
	write("libexec/gcc/arm-none-eabi/14.2.1/cc1"+exe, "cc1")
	write("libexec/gcc/arm-none-eabi/14.2.1/f951"+exe, "f951")
	write("libexec/gcc/arm-none-eabi/14.2.1/lto1"+exe, "lto1")

	for _, parent := range []string{"lib/gcc/arm-none-eabi/14.2.1", "arm-none-eabi/lib"} {
		for _, arch := range allThumbArchs {
			write(parent+"/thumb/"+arch+"/libgcc.a", arch)
			write(parent+"/thumb/"+arch+"/hard/libgcc.a", arch+"-hard")
			write(parent+"/thumb/"+arch+"/softfp/libgcc.a", arch+"-softfp")
		}
		write(parent+"/arm/v5te/hard/libgcc.a", "arm")
		write(parent+"/libgcc.a", "default")
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	gt.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
