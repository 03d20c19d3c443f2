// Command moodbeats runs the MoodBeats API and its maintenance commands.
package main

import "github.com/justestif/go-moodbeats/internal/cli"

func main() {
	cli.Execute()
}
