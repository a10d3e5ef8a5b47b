// Package handlers implements the telnet text-play session on top of the
// game coordinator.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/frontend/telnet"
	"github.com/cory-johannsen/parlor/internal/game/command"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/gameserver"
	"github.com/cory-johannsen/parlor/internal/observability"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

const welcome = "Welcome to parlor. Type help for commands."

// errQuit ends the command loop without an error.
var errQuit = errors.New("quit")

// PlayHandler runs telnet sessions as coordinator connections.
type PlayHandler struct {
	coord    *gameserver.Coordinator
	commands *command.Registry
	logger   *zap.Logger
}

// NewPlayHandler creates a PlayHandler.
//
// Precondition: coord and logger must be non-nil.
func NewPlayHandler(coord *gameserver.Coordinator, logger *zap.Logger) *PlayHandler {
	return &PlayHandler{
		coord:    coord,
		commands: command.DefaultRegistry(),
		logger:   logger,
	}
}

// HandleSession connects conn to the coordinator, renders its events on a
// goroutine and runs commands until the client quits or goes away.
//
// Postcondition: The coordinator connection is disconnected before returning.
func (h *PlayHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	connID := uuid.NewString()
	c, err := h.coord.Connect(connID)
	if err != nil {
		return fmt.Errorf("registering telnet connection: %w", err)
	}
	log := h.logger.With(observability.Conn(connID))
	log.Info("telnet player connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	_ = conn.WriteLine(telnet.Bold.Paint(welcome))

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		h.renderEvents(conn, c.Outbox)
	}()

	err = h.commandLoop(ctx, connID, conn)
	if errors.Is(err, errQuit) {
		_ = conn.WriteLine("Goodbye.")
		err = nil
	}
	h.coord.Disconnect(connID)
	<-pumpDone
	log.Info("telnet player disconnected", zap.Error(err))
	return err
}

// renderEvents writes outbox events until the outbox closes. A closed outbox
// also closes the connection so an overflowed client is dropped.
func (h *PlayHandler) renderEvents(conn *telnet.Conn, outbox *session.Outbox) {
	connID := outbox.ConnID()
	view := newRoomView(connID)
	for ev := range outbox.Events() {
		if err := conn.WriteLine(view.Render(ev)); err != nil {
			h.logger.Debug("telnet write failed", observability.Conn(connID), zap.Error(err))
		}
	}
	_ = conn.Close()
}

func (h *PlayHandler) commandLoop(ctx context.Context, connID string, conn *telnet.Conn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		inv, err := h.commands.Bind(line)
		switch {
		case err != nil:
			_ = conn.WriteLine(telnet.Red.Paint(usageMessage(err)))
			continue
		case inv.Command == nil:
			continue
		}
		if err := h.run(connID, conn, inv); err != nil {
			return err
		}
	}
}

func usageMessage(err error) string {
	if errors.Is(err, command.ErrUnknownCommand) {
		return "Unknown command. Type help for a list."
	}
	return "Usage: " + strings.TrimPrefix(err.Error(), command.ErrUsage.Error()+": ")
}

// run drives one command. Rule failures arrive as operation_rejected events
// through the outbox, so coordinator errors are not reported here.
func (h *PlayHandler) run(connID string, conn *telnet.Conn, inv command.Invocation) error {
	switch inv.Command.Handler {
	case command.HandlerJoin:
		req := protocol.CreateOrJoinRoom{GameID: inv.Args[0], Username: inv.Args[1]}
		if len(inv.Args) > 2 {
			req.RoomID = inv.Args[2]
		}
		_ = h.coord.Join(connID, req)
	case command.HandlerSay:
		_ = h.coord.Chat(connID, protocol.ChatMessage{Message: inv.RawArgs})
	case command.HandlerMove:
		cell, err := strconv.Atoi(inv.Args[0])
		if err != nil {
			_ = conn.WriteLine(telnet.Red.Paint("Usage: " + inv.Command.Usage))
			return nil
		}
		_ = h.coord.GridMove(connID, "", cell)
	case command.HandlerChoose:
		_ = h.coord.Choose(connID, "", inv.Args[0])
	case command.HandlerWord:
		_ = h.coord.SetWord(connID, "", inv.RawArgs)
	case command.HandlerGuess:
		_ = h.coord.Guess(connID, "", inv.Args[0])
	case command.HandlerReset:
		_ = h.coord.Reset(connID)
	case command.HandlerLeave:
		_ = h.coord.Leave(connID)
	case command.HandlerHelp:
		_ = conn.WriteLine(h.helpText())
	case command.HandlerQuit:
		return errQuit
	}
	return nil
}

func (h *PlayHandler) helpText() string {
	var b strings.Builder
	b.WriteString(telnet.Bold.Paint("Commands:"))
	for _, cmd := range h.commands.Commands() {
		usage := cmd.Usage
		if len(cmd.Aliases) > 0 {
			usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "\n  %-40s %s", usage, cmd.Help)
	}
	fmt.Fprintf(&b, "\nGames: %s", strings.Join(gameTags(), ", "))
	return b.String()
}

func gameTags() []string {
	types := room.GameTypes()
	tags := make([]string, len(types))
	for i, gt := range types {
		tags[i] = gt.String()
	}
	return tags
}
