package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/examassist/waecrag/internal/api"
	"github.com/examassist/waecrag/internal/client"
	"github.com/examassist/waecrag/internal/client/reassemble"
	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/pkg/logz"
)

var serverAddr string

func main() {

	logz.Init()
	var logger = logz.NewLogger("chat")

	flag.StringVar(&serverAddr, "server", "http://localhost:3000", "address of the answer server")
	flag.Parse()

	streamClient := client.New(serverAddr)
	session := client.NewSession()
	stdin := bufio.NewScanner(os.Stdin)

	fmt.Println("WAEC past questions assistant ready.")
	fmt.Println("You can narrow a question with a subject or year (e.g. 'biology questions in 2012 about cells').")
	fmt.Println("Type 'history' to review this session, 'exit' to quit.")

	for {
		fmt.Print("\nYour question: ")
		if !stdin.Scan() {
			break
		}
		question := strings.TrimSpace(stdin.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}
		if strings.EqualFold(question, "history") {
			printHistory(session)
			continue
		}

		session.AddTurn(ragModel.RoleUser, question)
		answer, err := askOnce(streamClient, question)
		if err != nil {
			logger.Error("Question failed", "error", err)
			fmt.Println("Could not get an answer:", err)
			continue
		}
		session.AddTurn(ragModel.RoleAssistant, answer)
	}
}

func printHistory(session *client.Session) {
	turns := session.Turns()
	if len(turns) == 0 {
		fmt.Println("No questions asked yet.")
		return
	}
	for _, turn := range turns {
		label := "You"
		if turn.Role == ragModel.RoleAssistant {
			label = "AI"
		}
		fmt.Printf("%s: %s\n", label, turn.Content)
	}
}

// askOnce streams one answer, re-rendering the reformatted text in place as
// fragments arrive. The terminal view is replaced wholesale on each
// fragment so breaks introduced by later fragments never corrupt earlier
// output.
func askOnce(streamClient *client.Client, rawQuestion string) (string, error) {
	question, subject, year := client.ParseQueryFilters(rawQuestion)

	events, err := streamClient.Ask(context.Background(), api.AskRequest{
		Question: question,
		Subject:  subject,
		Year:     year,
	})
	if err != nil {
		return "", err
	}

	assembler := reassemble.New()
	previousLines := 0

	// A later fragment can move a line break into text that is already on
	// screen, so every repaint replaces the whole answer rather than
	// appending to it.
	repaint := func(text string) {
		if previousLines > 0 {
			fmt.Printf("\033[%dA", previousLines)
		}
		fmt.Print("\r\033[J")
		fmt.Print("AI: " + text)
		previousLines = strings.Count(text, "\n")
	}
	repaint("")

	for event := range events {
		if event.Err != nil {
			assembler.Fail(event.Err.Error())
			break
		}
		repaint(assembler.Push(event.Text))
	}

	final := assembler.Rendered()
	repaint(final)
	fmt.Println()
	return final, nil
}
