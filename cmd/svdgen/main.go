package main

import "github.com/OpenTraceLab/OpenTraceSVD/cmd/svdgen/cmd"

func main() {
	cmd.Execute()
}
