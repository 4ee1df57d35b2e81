package main

import "github.com/iwtcode/oeeMonitor/internal/app"

func main() {
	app.New().Run()
}
