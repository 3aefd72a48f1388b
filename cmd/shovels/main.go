// Command shovels plays the card game from a terminal. It drives exactly the
// same session library a graphical client would: the room directory over
// HTTP, one websocket per room, and the phase-gated action controller.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/shovelsgame/shovels-client/internal/action"
	"github.com/shovelsgame/shovels-client/internal/auth"
	"github.com/shovelsgame/shovels-client/internal/config"
	"github.com/shovelsgame/shovels-client/internal/conn"
	"github.com/shovelsgame/shovels-client/internal/game"
	"github.com/shovelsgame/shovels-client/internal/rooms"
	"github.com/shovelsgame/shovels-client/internal/session"
)

func main() {
	cfg := config.Load()

	root := &cli.Command{
		Name:  "shovels",
		Usage: "play Shovels from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "room directory base URL",
				Value:   cfg.APIBaseURL,
				Sources: cli.EnvVars("SHOVELS_API_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer token from the auth service",
				Value:   cfg.Token,
				Sources: cli.EnvVars("SHOVELS_TOKEN"),
			},
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
		},
		Commands: []*cli.Command{
			{
				Name:  "rooms",
				Usage: "browse the room directory",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list open rooms",
						Action: runRoomsList,
					},
					{
						Name:      "create",
						Usage:     "create a room",
						ArgsUsage: "<name>",
						Action:    runRoomsCreate,
					},
				},
			},
			{
				Name:      "play",
				Usage:     "join a room and play interactively",
				ArgsUsage: "<room_id>",
				Action:    runPlay,
			},
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cmd *cli.Command) *zap.Logger {
	if cmd.Bool("debug") {
		log, _ := zap.NewDevelopment()
		return log
	}
	return zap.NewNop()
}

func newCfg(cmd *cli.Command) config.Config {
	return config.Config{
		APIBaseURL: strings.TrimRight(cmd.String("api"), "/"),
		Token:      cmd.String("token"),
	}
}

func runRoomsList(ctx context.Context, cmd *cli.Command) error {
	cfg := newCfg(cmd)
	client := rooms.NewClient(cfg.APIBaseURL, cfg.Token, newLogger(cmd))
	infos, err := client.List(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no open rooms")
		return nil
	}
	for _, r := range infos {
		status := "waiting"
		if r.IsStarted {
			status = "started"
		}
		fmt.Printf("%-10s %-20s %d players  %s\n", r.RoomID, r.Name, r.PlayerCount, status)
	}
	return nil
}

func runRoomsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: shovels rooms create <name>")
	}
	cfg := newCfg(cmd)
	client := rooms.NewClient(cfg.APIBaseURL, cfg.Token, newLogger(cmd))
	room, err := client.Create(ctx, name)
	if err != nil {
		return err
	}
	fmt.Printf("created room %s (%s)\n", room.RoomID, room.Name)
	return nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	roomID := cmd.Args().First()
	if roomID == "" {
		return fmt.Errorf("usage: shovels play <room_id>")
	}
	cfg := newCfg(cmd)
	log := newLogger(cmd)

	me, err := auth.DecodeIdentity(cfg.Token)
	if err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}

	directory := rooms.NewClient(cfg.APIBaseURL, cfg.Token, log)
	if err := directory.Join(ctx, roomID, me.ID); err != nil {
		return err
	}

	c, err := conn.Open(ctx, conn.Target{
		BaseURL: cfg.WSBaseURL(),
		RoomID:  roomID,
		Token:   cfg.Token,
	}, log)
	if err != nil {
		return err
	}
	defer c.Close()

	store := session.NewStore()
	ctrl := action.NewController(store, c, me.ID, log)
	sess := session.New(c.Events(), store, log, ctrl)

	updates := make(chan *game.GameState, 8)
	store.Subscribe("cli", updates)
	go func() {
		for s := range updates {
			printState(s, me.ID)
			if msg, ok := store.Err(); ok {
				fmt.Println("!", msg)
			}
		}
	}()

	sess.Start()
	fmt.Printf("connected to %s as %s — type 'help'\n", roomID, me.Name)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-sess.Done():
			if err := sess.Err(); err != nil {
				return fmt.Errorf("connection lost: %w", err)
			}
			fmt.Println("connection closed")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := runCommand(ctrl, store, line); quit {
				return nil
			}
		}
	}
}

// runCommand executes one line of the play grammar. Returns true on quit.
func runCommand(ctrl *action.Controller, store *session.Store, line string) bool {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(parts) == 0 {
		return false
	}

	var err error
	switch parts[0] {
	case "quit":
		return true
	case "help":
		fmt.Println("commands:")
		fmt.Println("  draw <deck|discard> <deck|discard>   draw two cards")
		fmt.Println("  discard <hand_idx>                   discard one card")
		fmt.Println("  play <hand_idx> <char_idx>           stack a card on a character")
		fmt.Println("  end                                  end the play subphase")
		fmt.Println("  start                                start the game (lobby)")
		fmt.Println("  cancel | state | quit")
	case "start":
		err = ctrl.StartGame()
	case "end":
		err = ctrl.Advance()
	case "cancel":
		ctrl.Cancel()
	case "state":
		printState(store.Current(), "")
	case "draw":
		err = runDraw(ctrl, parts[1:])
	case "discard":
		var idx int
		if idx, err = argIndex(parts, 1); err == nil {
			ctrl.SelectCard(idx)
			err = ctrl.ConfirmDiscard()
		}
	case "play":
		var handIdx, charIdx int
		if handIdx, err = argIndex(parts, 1); err == nil {
			if charIdx, err = argIndex(parts, 2); err == nil {
				ctrl.SelectCard(handIdx)
				err = ctrl.ClickCharacter(charIdx)
			}
		}
	default:
		fmt.Println("unknown command, type 'help'")
	}

	if err != nil {
		fmt.Println("!", err)
	}
	return false
}

func runDraw(ctrl *action.Controller, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: draw <deck|discard> <deck|discard>")
	}
	ctrl.ResetDraw()
	for _, arg := range args {
		src, ok := game.ParseDrawSource(strings.ToUpper(arg))
		if !ok {
			return fmt.Errorf("unknown draw source %q", arg)
		}
		if err := ctrl.AddDrawSource(src); err != nil {
			return err
		}
	}
	return ctrl.ConfirmDraw()
}

func argIndex(parts []string, pos int) (int, error) {
	if len(parts) <= pos {
		return 0, fmt.Errorf("missing index argument")
	}
	idx, err := strconv.Atoi(parts[pos])
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer")
	}
	return idx, nil
}

func printState(s *game.GameState, myID string) {
	if s == nil {
		fmt.Println("no state yet")
		return
	}
	if s.Phase.IsLobby() {
		fmt.Printf("lobby: %d player(s) waiting\n", len(s.Players))
		for _, p := range s.Players {
			fmt.Println("  -", p.Name)
		}
		return
	}

	current, _ := s.CurrentPlayer()
	turn := "?"
	if current != nil {
		turn = current.Name
	}
	fmt.Printf("phase %d / %s — %s's turn — deck %d, discard %d\n",
		int(s.Phase), s.TurnSubphase, turn, len(s.Deck), len(s.DiscardPile))

	if me, ok := s.PlayerByID(myID); ok {
		labels := make([]string, len(me.Hand))
		for i, card := range me.Hand {
			labels[i] = fmt.Sprintf("%d:%s", i, card.String())
		}
		fmt.Println("  hand:", strings.Join(labels, "  "))
		for i, ch := range me.Characters {
			tapped := ""
			if ch.IsTapped {
				tapped = " (tapped)"
			}
			fmt.Printf("  char %d: %s of %s, %d stacked, shield %d%s\n",
				i, ch.Rank, ch.Suit, len(ch.Stack), ch.Shield, tapped)
		}
	}
}
