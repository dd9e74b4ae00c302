package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/internal/handlers"
)

type ConsoleConfig struct {
	APIBaseURL string
	SessionID  string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		SessionID:  os.Getenv("SESSION_ID"),
		Timeout:    30 * time.Second,
	}

	client := &apiClient{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}

	if !client.healthy() {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	resp, err := openSession(client, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(client, resp.State),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// openSession resumes SESSION_ID when set, otherwise asks for a pen name and starts a new game.
func openSession(client *apiClient, cfg *ConsoleConfig) (*handlers.SessionResponse, error) {
	if cfg.SessionID != "" {
		id, err := uuid.Parse(cfg.SessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_ID: %w", err)
		}
		return client.getSession(id)
	}

	fmt.Print("Your pen name: ")
	name, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return client.createSession(strings.TrimSpace(name))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
