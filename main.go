package main

import "github.com/ValentinKolb/gaea/cmd"

func main() {
	cmd.Execute()
}
