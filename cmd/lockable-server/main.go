package main

import "github.com/oshokin/lockable/cmd/lockable-server/cmd"

func main() {
	cmd.Execute()
}
