// Command royal is a terminal Pomodoro timer with task tracking.
package main

import "github.com/xvierd/royal-pomodoro/cmd"

func main() {
	cmd.Execute()
}
