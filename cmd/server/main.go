package main

import "chrona/internal/app"

func main() {
	app.Run()
}
