package main

import "cardscan/cmd"

func main() {
	cmd.Execute()
}
