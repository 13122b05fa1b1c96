package main

import "github.com/athapong/ldbc-dense/cmd/ldbcdense/cmd"

func main() {
	cmd.Execute()
}
