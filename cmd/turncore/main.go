// Command turncore runs turn-based RPG modules: it loads module content,
// drives the engine with the terminal viewer or the line console, and keeps
// save slots in SQLite.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
