package main

import "github.com/oshokin/lockable/cmd/lockable-client/cmd"

func main() {
	cmd.Execute()
}
