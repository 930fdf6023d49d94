package cli

import "strings"

// Command is a parsed slash command.
type Command struct {
	Verb string // canonical name without the slash
	Args []string
}

var verbAliases = map[string]string{
	"q":      "quit",
	"exit":   "quit",
	"?":      "help",
	"h":      "help",
	"st":     "status",
	"m":      "map",
	"mv":     "move",
	"walk":   "move",
	"a":      "attack",
	"hit":    "attack",
	"kill":   "attack",
	"use":    "ability",
	"cast":   "ability",
	"e":      "end",
	"z":      "wait",
	"rest":   "wait",
	"travel": "go",
	"ls":     "slots",
	"rm":     "delete",
}

// fillers are dropped from arguments, so "/attack the rat" and
// "/move to 3 1" parse like their short forms.
var fillers = map[string]bool{
	"the": true, "a": true, "an": true,
	"at": true, "to": true, "on": true,
}

// ParseCommand splits a slash command into its canonical verb and
// arguments. The verb is lowercased and aliases are expanded; arguments
// keep their case because slot names are case-sensitive.
func ParseCommand(input string) Command {
	words := strings.Fields(strings.TrimSpace(input))
	if len(words) == 0 {
		return Command{}
	}
	verb := strings.ToLower(strings.TrimPrefix(words[0], "/"))
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	args := make([]string, 0, len(words)-1)
	for _, w := range words[1:] {
		if !fillers[strings.ToLower(w)] {
			args = append(args, w)
		}
	}
	return Command{Verb: verb, Args: args}
}
