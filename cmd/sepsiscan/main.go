package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/sepsiscan/sepsiscan/internal/app"
	"github.com/sepsiscan/sepsiscan/internal/config"
	"github.com/sepsiscan/sepsiscan/internal/onboarding"
	"github.com/sepsiscan/sepsiscan/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	serverMode = flag.Bool("server", false, "Run in server mode")
	onboard    = flag.Bool("onboard", false, "Run onboarding wizard")
	version    = "dev"
)

func main() {
	// Handle subcommands before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "onboard":
			runOnboarding()
			return
		case "help", "--help", "-h":
			printExtendedHelp()
			return
		case "version", "--version", "-v":
			fmt.Printf("SepsiScan version %s\n", version)
			return
		}
	}

	flag.Parse()

	// Offer onboarding on first run in an interactive terminal
	if onboarding.CheckFirstRun() && !*onboard && *configPath == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("Welcome to SepsiScan!")
		fmt.Println()
		fmt.Println("It looks like this is your first time running SepsiScan.")
		fmt.Print("Run the setup wizard? (Y/n): ")

		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		if response == "" || response == "y" || response == "yes" {
			runOnboarding()
			return
		}
	}

	if *onboard {
		runOnboarding()
		return
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting SepsiScan", zap.String("version", version))

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	app.New(cfg, st, logger, version).RunServer()
}

func runOnboarding() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	wizard := onboarding.NewWizard(logger)
	if err := wizard.Run(); err != nil {
		fmt.Printf("\nOnboarding failed: %v\n", err)
		os.Exit(1)
	}
}

func printExtendedHelp() {
	fmt.Println("SepsiScan - Wellness check-in and risk awareness")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sepsiscan                 Run the server (default)")
	fmt.Println("  sepsiscan -server         Run the server")
	fmt.Println("  sepsiscan onboard         Run setup wizard")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config <path>            Path to config file")
	fmt.Println("  -data <path>              Path to data directory")
	fmt.Println("  -onboard                  Run onboarding wizard")
	fmt.Println("  --help, -h                Show this help")
	fmt.Println("  --version, -v             Show version")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SEPSISCAN_* variables override config values, e.g.")
	fmt.Println("  SEPSISCAN_SERVER_PORT=9090 sepsiscan -server")
}
