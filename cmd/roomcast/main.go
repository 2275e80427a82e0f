// roomcast is the terminal chat client.
//
// It connects to a roomcast-server, sends the username as the handshake
// frame, then hands the terminal to the TUI: keystrokes become message
// and typing events, and every server snapshot repaints the full frame.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/roomcast/roomcast/src/client"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var url string
	var name string
	var logOutput string

	flagSet := pflag.NewFlagSet("roomcast", pflag.ContinueOnError)
	flagSet.StringVar(&url, "url", "ws://localhost:5000/ws", "chat server WebSocket URL")
	flagSet.StringVar(&name, "name", "", "username (prompted when omitted)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logger := zerolog.Nop()
	if logOutput != "" {
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = zerolog.New(f).With().Timestamp().Logger()
	}

	if name == "" {
		var err error
		name, err = promptName()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Connecting to %s ...\n", url)
	transport, err := client.Dial(url)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", url, err)
	}
	defer transport.Close()
	if err := transport.Handshake(name); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	model := client.NewModel(transport, name, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(client.Model); ok && m.Err() != nil {
		fmt.Println("Lost connection to the server.")
	}
	return nil
}

// promptName asks for a username, offering a generated one as default.
func promptName() (string, error) {
	suggested := fmt.Sprintf("user%d", 10+rand.Intn(90))
	fmt.Printf("Enter username or press enter to accept %s: ", suggested)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	name := strings.TrimSpace(line)
	if name == "" {
		name = suggested
	}
	return name, nil
}
