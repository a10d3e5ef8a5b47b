// Package command provides the text command registry and parser used by the
// telnet frontend.
package command

// Handler identifiers map commands to coordinator operations.
const (
	HandlerJoin   = "join"
	HandlerSay    = "say"
	HandlerMove   = "move"
	HandlerChoose = "choose"
	HandlerWord   = "word"
	HandlerGuess  = "guess"
	HandlerReset  = "reset"
	HandlerLeave  = "leave"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
)

// Categories for the help listing.
const (
	CategoryRoom   = "room"
	CategoryPlay   = "play"
	CategorySystem = "system"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "move <0-8>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command in the help listing.
	Category string
	// Handler names the coordinator operation this command drives.
	Handler string
	// MinArgs is the number of whitespace-separated arguments required.
	MinArgs int
}

// BuiltinCommands returns every command the text frontend understands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "join", Usage: "join <game> <username> [room]", Help: "Create or join a room (games: tic-tac-toe, rock-paper-scissors, hangman)", Category: CategoryRoom, Handler: HandlerJoin, MinArgs: 2},
		{Name: "leave", Usage: "leave", Help: "Leave your room", Category: CategoryRoom, Handler: HandlerLeave},
		{Name: "say", Aliases: []string{"'"}, Usage: "say <text>", Help: "Chat with your room", Category: CategoryRoom, Handler: HandlerSay, MinArgs: 1},

		{Name: "move", Aliases: []string{"m"}, Usage: "move <0-8>", Help: "Mark a tic-tac-toe cell", Category: CategoryPlay, Handler: HandlerMove, MinArgs: 1},
		{Name: "choose", Aliases: []string{"c"}, Usage: "choose <rock|paper|scissors>", Help: "Pick your rock-paper-scissors hand", Category: CategoryPlay, Handler: HandlerChoose, MinArgs: 1},
		{Name: "word", Usage: "word <secret>", Help: "Set the hangman word (setter only)", Category: CategoryPlay, Handler: HandlerWord, MinArgs: 1},
		{Name: "guess", Aliases: []string{"g"}, Usage: "guess <letter>", Help: "Guess a hangman letter (guesser only)", Category: CategoryPlay, Handler: HandlerGuess, MinArgs: 1},
		{Name: "reset", Usage: "reset", Help: "Start a new game in your room", Category: CategoryPlay, Handler: HandlerReset},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Usage: "quit", Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}
