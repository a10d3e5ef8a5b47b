package command

import "strings"

// sayPrefix lets "'hello" stand for "say hello".
const sayPrefix = "'"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with inner spacing preserved.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	if strings.HasPrefix(line, sayPrefix) {
		return withArgs(sayPrefix, line[len(sayPrefix):])
	}

	cmd, rest, _ := strings.Cut(line, " ")
	return withArgs(strings.ToLower(cmd), rest)
}

func withArgs(cmd, rest string) ParseResult {
	rest = strings.TrimSpace(rest)
	res := ParseResult{Command: cmd, RawArgs: rest}
	if rest != "" {
		res.Args = strings.Fields(rest)
	}
	return res
}
