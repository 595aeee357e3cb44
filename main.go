/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/jacobarthurs/myplan/cmd"

func main() {
	cmd.Execute()
}
