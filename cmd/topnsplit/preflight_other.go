//go:build !unix

package main

import "os"

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".topnsplit-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
