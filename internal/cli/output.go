package cli

import (
	"encoding/json"
	"fmt"

	"github.com/al-chris/1-2-3-game/internal/model"
)

// printEvent renders one server event for the terminal. JSON mode emits the
// raw envelope as a JSON line instead.
func printEvent(env model.Envelope, jsonOutput bool) {
	if jsonOutput {
		data, err := json.Marshal(env)
		if err != nil {
			return
		}
		fmt.Println(string(data))
		return
	}

	switch env.Event {
	case model.EventGameCreated:
		var p model.GameCreatedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			fmt.Printf("Game created. Share this code: %s\n", p.GameID)
		}

	case model.EventGameNotFound:
		fmt.Println("No game with that code.")

	case model.EventGameFull:
		fmt.Println("That game already has two players.")

	case model.EventPlayerJoined:
		var p model.PlayerJoinedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			fmt.Printf("%s vs %s. Type 'ready' when you are.\n", p.Player1, p.Player2)
		}

	case model.EventCountdown:
		var p model.CountdownPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			fmt.Printf("  %s\n", p.Count)
		}

	case model.EventRoundStart:
		fmt.Println("Type 'word <your word>' now!")

	case model.EventRoundResults:
		var p model.RoundResultsPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			verdict := "No match."
			if p.IsMatch {
				verdict = "MATCH!"
			}
			fmt.Printf("%q vs %q. %s Score: %d-%d. Type 'again yes' or 'again no'.\n",
				p.Player1Word, p.Player2Word, verdict, p.Player1Score, p.Player2Score)
		}

	case model.EventWaitingForOther:
		fmt.Println("Waiting for the other player...")

	case model.EventNewGameStarting:
		var p model.NewGameStartingPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			fmt.Printf("Rematch! %s vs %s (score %d-%d)\n",
				p.Player1, p.Player2, p.Player1Score, p.Player2Score)
		}

	case model.EventGameEnded:
		var p model.GameEndedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			fmt.Println(p.Message)
		}

	case model.EventPlayerDisconnected:
		fmt.Println("The other player left.")

	case model.EventGameError:
		var p model.GameErrorPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			fmt.Printf("Error: %s\n", p.Message)
		}

	default:
		fmt.Printf("[%s]\n", env.Event)
	}
}
