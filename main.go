package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lockmy/pkg/locking"
	"lockmy/pkg/logging"
	"lockmy/pkg/philo"
	"lockmy/pkg/ui"
)

type Configuration struct {
	Diners   int
	Method   string
	Strategy string
	Policy   string
	Timeout  time.Duration
	Hold     time.Duration
	Plain    bool
	LogLevel string
	LogPath  string
}

func main() {
	config := parseArguments()

	if err := logging.Init(logging.Config{
		Level:      logging.LogLevel(config.LogLevel),
		OutputPath: config.LogPath,
		Format:     "text",
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := buildRunConfig(config)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if config.Plain {
		showSplashScreen()
		if err := runPlain(cfg); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		return
	}

	if err := startDashboard(cfg); err != nil {
		log.Fatalf("Failed to start UI: %v", err)
	}
}

// parseArguments processes command-line flags
func parseArguments() Configuration {
	var config Configuration

	flag.IntVar(&config.Diners, "diners", 5, "Number of dining philosophers (2-256)")
	flag.StringVar(&config.Method, "method", "multi", "Deadlock prevention: unsafe, auth or multi")
	flag.StringVar(&config.Strategy, "strategy", "rw", "Chopstick lock strategy: rw, wr or broken")
	flag.StringVar(&config.Policy, "policy", "rw", "Authorization policy: rw or wr")
	flag.DurationVar(&config.Timeout, "timeout", 5*time.Second, "Deadlock timeout for the run")
	flag.DurationVar(&config.Hold, "hold", 20*time.Millisecond, "Pause between the two chopstick pickups")
	flag.BoolVar(&config.Plain, "plain", false, "Print results instead of the live dashboard")
	flag.StringVar(&config.LogLevel, "log-level", "INFO", "Log level: DEBUG, INFO, WARN or ERROR")
	flag.StringVar(&config.LogPath, "log", "", "Log file path (default stdout)")

	flag.Parse()

	return config
}

func buildRunConfig(config Configuration) (philo.Config, error) {
	cfg := philo.Config{
		Diners:  config.Diners,
		Timeout: config.Timeout,
		Hold:    config.Hold,
	}

	switch config.Method {
	case "unsafe":
		cfg.Method = philo.Unsafe
	case "auth":
		cfg.Method = philo.AuthOnly
	case "multi":
		cfg.Method = philo.MultiLocked
	default:
		return cfg, fmt.Errorf("unknown method %q", config.Method)
	}

	switch config.Strategy {
	case "rw":
		cfg.Strategy = locking.ReadWrite
	case "wr":
		cfg.Strategy = locking.WriteOnly
	case "broken":
		cfg.Strategy = locking.Broken
	default:
		return cfg, fmt.Errorf("unknown strategy %q", config.Strategy)
	}

	switch config.Policy {
	case "rw":
		cfg.Policy = locking.PolicyReadWrite
	case "wr":
		cfg.Policy = locking.PolicyWriteOnly
	default:
		return cfg, fmt.Errorf("unknown policy %q", config.Policy)
	}

	return cfg, cfg.Validate()
}

// showSplashScreen displays the banner for plain-mode runs
func showSplashScreen() {
	splash := `
╔═══════════════════════════════════════════════╗
║                                               ║
║   ██╗      ██████╗  ██████╗██╗  ██╗           ║
║   ██║     ██╔═══██╗██╔════╝██║ ██╔╝           ║
║   ██║     ██║   ██║██║     █████╔╝            ║
║   ██║     ██║   ██║██║     ██╔═██╗            ║
║   ███████╗╚██████╔╝╚██████╗██║  ██╗           ║
║   ╚══════╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝ MY        ║
║                                               ║
║   Shared state you cannot touch unlocked      ║
║                                               ║
╚═══════════════════════════════════════════════╝
`

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)

	fmt.Println(style.Render(splash))
}

// runPlain runs the table without the dashboard and prints one line per diner
func runPlain(cfg philo.Config) error {
	logger := logging.WithRun(cfg.Method.String(), cfg.Strategy.String())
	logger.Info("run starting", "diners", cfg.Diners)

	table, err := philo.NewTable(cfg)
	if err != nil {
		return err
	}

	results, err := table.Run(context.Background())
	if errors.Is(err, philo.ErrDeadlock) {
		fmt.Println("(deadlock timeout)")
		os.Exit(3)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("diner:\t%d\t%d\t%d\n", r.Diner, r.Value, r.Tries)
	}
	return nil
}

// startDashboard launches the Bubble Tea UI
func startDashboard(cfg philo.Config) error {
	model, err := ui.NewModel(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %v", err)
	}
	return nil
}
