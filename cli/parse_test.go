package cli

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"/status", Command{Verb: "status", Args: []string{}}},
		{"  /MOVE 3 1 ", Command{Verb: "move", Args: []string{"3", "1"}}},
		{"/move to 3 1", Command{Verb: "move", Args: []string{"3", "1"}}},
		{"/a the rat", Command{Verb: "attack", Args: []string{"rat"}}},
		{"/hit at giant rat", Command{Verb: "attack", Args: []string{"giant", "rat"}}},
		{"/use rally", Command{Verb: "ability", Args: []string{"rally"}}},
		{"/q", Command{Verb: "quit", Args: []string{}}},
		{"/exit", Command{Verb: "quit", Args: []string{}}},
		{"/save Before_Boss", Command{Verb: "save", Args: []string{"Before_Boss"}}},
		{"/z 1000", Command{Verb: "wait", Args: []string{"1000"}}},
		{"/dance", Command{Verb: "dance", Args: []string{}}},
		{"", Command{}},
	}
	for _, tt := range tests {
		got := ParseCommand(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}
