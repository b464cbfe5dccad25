package main

import "letitflow-media/cmd"

func main() {
	cmd.Execute()
}
