package main

import "github.com/mendtool/mend/cmd"

func main() {
	cmd.Execute()
}
