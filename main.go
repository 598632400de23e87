package main

import "checkin-kiosk/cmd"

func main() {
	cmd.Execute()
}
