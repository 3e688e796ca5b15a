package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/al-chris/1-2-3-game/internal/model"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game from the terminal",
	}

	cmd.AddCommand(newPlayCreateCmd())
	cmd.AddCommand(newPlayJoinCmd())

	return cmd
}

func newPlayCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new game and wait for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := Connect(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Send(model.EventCreateGame, model.CreateGamePayload{
				Username: cfg.Username,
			}); err != nil {
				return err
			}

			env, err := client.Read()
			if err != nil {
				return err
			}
			if env.Event == model.EventGameError {
				printEvent(env, cfg.JSON)
				return fmt.Errorf("could not create game")
			}
			printEvent(env, cfg.JSON)

			var created model.GameCreatedPayload
			if err := unmarshalPayload(env, &created); err != nil {
				return err
			}

			return playLoop(client, created.GameID)
		},
	}
}

func newPlayJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join an existing game by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := model.SessionID(strings.ToUpper(args[0]))

			client, err := Connect(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Send(model.EventJoinGame, model.JoinGamePayload{
				GameID:   gameID,
				Username: cfg.Username,
			}); err != nil {
				return err
			}

			return playLoop(client, gameID)
		},
	}
}

// playLoop runs the interactive session: server events print as they
// arrive, and stdin lines drive the game until either side ends it
func playLoop(client *Client, gameID model.SessionID) error {
	done := make(chan error, 1)

	go func() {
		for {
			env, err := client.Read()
			if err != nil {
				done <- nil
				return
			}
			printEvent(env, cfg.JSON)

			switch env.Event {
			case model.EventGameNotFound, model.EventGameFull:
				done <- fmt.Errorf("could not join game")
				return
			case model.EventGameEnded:
				done <- nil
				return
			}
		}
	}()

	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- strings.TrimSpace(scanner.Text())
		}
		close(input)
	}()

	for {
		select {
		case err := <-done:
			return err

		case line, ok := <-input:
			if !ok {
				return client.Send(model.EventLeaveGame, model.LeaveGamePayload{GameID: gameID})
			}

			cmd, rest, _ := strings.Cut(line, " ")
			switch cmd {
			case "ready":
				if err := client.Send(model.EventReadyForRound, model.ReadyForRoundPayload{GameID: gameID}); err != nil {
					return err
				}
			case "word":
				if err := client.Send(model.EventSubmitWord, model.SubmitWordPayload{GameID: gameID, Word: rest}); err != nil {
					return err
				}
			case "again":
				if err := client.Send(model.EventPlayAgainChoice, model.PlayAgainPayload{
					GameID:    gameID,
					PlayAgain: rest == "yes",
				}); err != nil {
					return err
				}
			case "leave", "quit":
				return client.Send(model.EventLeaveGame, model.LeaveGamePayload{GameID: gameID})
			case "":
			default:
				fmt.Println("Commands: ready, word <w>, again yes|no, leave")
			}
		}
	}
}

func unmarshalPayload(env model.Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("event %s had no payload", env.Event)
	}
	return json.Unmarshal(env.Payload, dst)
}
