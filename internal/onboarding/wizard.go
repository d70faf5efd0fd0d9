// Package onboarding implements the first-run setup wizard.
package onboarding

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// Wizard handles the interactive setup process.
type Wizard struct {
	reader *bufio.Reader
	logger *zap.Logger
	config *WizardConfig
}

// WizardConfig holds the answers collected during setup.
type WizardConfig struct {
	DataDir        string
	AdminPassword  string
	AutoDeleteDays int
	EnableTelegram bool
	TelegramToken  string
	TelegramChatID int64
	EnableDiscord  bool
	DiscordToken   string
	DiscordChannel string
}

// NewWizard creates a new setup wizard.
func NewWizard(logger *zap.Logger) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
		logger: logger,
		config: &WizardConfig{AutoDeleteDays: 90},
	}
}

// Run runs the interactive setup wizard.
func (w *Wizard) Run() error {
	w.clearScreen()
	fmt.Println("Welcome to SepsiScan!")
	fmt.Println()
	fmt.Println("SepsiScan helps you track daily wellness check-ins and spots")
	fmt.Println("warning signs that deserve a call to your healthcare provider.")
	fmt.Println()
	fmt.Println("This wizard sets up storage, access and caregiver alerts.")
	fmt.Println()
	fmt.Print("Press Enter to begin...")
	w.waitForEnter()

	if err := w.setupStorage(); err != nil {
		return fmt.Errorf("storage setup failed: %w", err)
	}
	if err := w.setupSecurity(); err != nil {
		return fmt.Errorf("security setup failed: %w", err)
	}
	if err := w.setupAlerts(); err != nil {
		return fmt.Errorf("alerts setup failed: %w", err)
	}
	if err := w.setupPrivacy(); err != nil {
		return fmt.Errorf("privacy setup failed: %w", err)
	}
	if err := w.writeConfiguration(); err != nil {
		return fmt.Errorf("configuration creation failed: %w", err)
	}

	w.showCompletion()
	return nil
}

func (w *Wizard) setupStorage() error {
	w.printHeader("Step 1: Storage")

	defaultDir := DefaultDataDir()
	fmt.Printf("Where should SepsiScan store its data? [default: %s]: ", defaultDir)
	dir, _ := w.reader.ReadString('\n')
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultDir
	}
	w.config.DataDir = dir

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	fmt.Println("✓ Storage configured")
	time.Sleep(500 * time.Millisecond)
	return nil
}

func (w *Wizard) setupSecurity() error {
	w.printHeader("Step 2: Access")

	fmt.Println("Set an admin password for the web API.")
	fmt.Println("Leave empty to allow open access on this machine.")
	fmt.Println()

	for {
		fmt.Print("Admin password (hidden): ")
		password, err := readPassword()
		if err != nil {
			return err
		}
		if password == "" {
			break
		}

		fmt.Print("Confirm password: ")
		confirm, err := readPassword()
		if err != nil {
			return err
		}
		if password == confirm {
			w.config.AdminPassword = password
			break
		}
		fmt.Println("Passwords do not match, try again.")
	}

	fmt.Println("✓ Access configured")
	time.Sleep(500 * time.Millisecond)
	return nil
}

func (w *Wizard) setupAlerts() error {
	w.printHeader("Step 3: Caregiver Alerts")

	fmt.Println("Urgent check-ins can notify a caregiver over Telegram or Discord.")
	fmt.Println()

	fmt.Print("Enable Telegram alerts? (y/n) [default: n]: ")
	if w.readYesNo() {
		w.config.EnableTelegram = true
		fmt.Println()
		fmt.Println("To set up Telegram:")
		fmt.Println("1. Message @BotFather on Telegram")
		fmt.Println("2. Create a new bot with /newbot")
		fmt.Println("3. Copy the bot token and the chat ID to notify")
		fmt.Println()
		fmt.Print("Bot token: ")
		token, _ := w.reader.ReadString('\n')
		w.config.TelegramToken = strings.TrimSpace(token)

		fmt.Print("Chat ID: ")
		chatID, _ := w.reader.ReadString('\n')
		id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
		if err != nil {
			fmt.Println("Invalid chat ID, Telegram alerts left disabled.")
			w.config.EnableTelegram = false
		} else {
			w.config.TelegramChatID = id
		}
	}

	fmt.Println()
	fmt.Print("Enable Discord alerts? (y/n) [default: n]: ")
	if w.readYesNo() {
		w.config.EnableDiscord = true
		fmt.Println()
		fmt.Print("Bot token: ")
		token, _ := w.reader.ReadString('\n')
		w.config.DiscordToken = strings.TrimSpace(token)

		fmt.Print("Channel ID: ")
		channel, _ := w.reader.ReadString('\n')
		w.config.DiscordChannel = strings.TrimSpace(channel)
	}

	fmt.Println("\n✓ Alerts configured")
	time.Sleep(500 * time.Millisecond)
	return nil
}

func (w *Wizard) setupPrivacy() error {
	w.printHeader("Step 4: Privacy")

	fmt.Println("Check-in history can be deleted automatically after a retention")
	fmt.Println("period. Profiles can override this individually.")
	fmt.Println()
	fmt.Print("Days to keep history [default: 90]: ")
	days, _ := w.reader.ReadString('\n')
	days = strings.TrimSpace(days)
	if days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			fmt.Println("Invalid number, keeping the default of 90 days.")
		} else {
			w.config.AutoDeleteDays = n
		}
	}

	fmt.Println("\n✓ Privacy configured")
	time.Sleep(500 * time.Millisecond)
	return nil
}

func (w *Wizard) writeConfiguration() error {
	configPath := filepath.Join(w.config.DataDir, "sepsiscan.yaml")

	configContent := fmt.Sprintf(`# SepsiScan Configuration
# Generated on %s

server:
  address: 0.0.0.0
  port: 8080

storage:
  data_dir: "%s"

security:
  admin_password: "%s"
  allow_origins:
    - "*"

alerts:
  telegram:
    enabled: %v
    bot_token: "%s"
    chat_id: %d
  discord:
    enabled: %v
    token: "%s"
    channel_id: "%s"

scheduler:
  missed_checkin_cron: "0 * * * *"
  privacy_sweep_cron: "30 3 * * *"
  queue_drain_cron: "*/5 * * * *"

privacy:
  default_auto_delete_days: %d
`, time.Now().Format("2006-01-02"),
		w.config.DataDir,
		w.config.AdminPassword,
		w.config.EnableTelegram, w.config.TelegramToken, w.config.TelegramChatID,
		w.config.EnableDiscord, w.config.DiscordToken, w.config.DiscordChannel,
		w.config.AutoDeleteDays)

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (w *Wizard) showCompletion() {
	w.clearScreen()
	fmt.Println("Setup complete!")
	fmt.Println()
	fmt.Printf("Data directory: %s\n", w.config.DataDir)
	fmt.Printf("Config file:    %s\n", filepath.Join(w.config.DataDir, "sepsiscan.yaml"))
	fmt.Println()
	fmt.Println("Start the server with:")
	fmt.Println("  sepsiscan -server")
	fmt.Println()
	fmt.Println("Then open http://localhost:8080/api/health to verify it is up.")
	fmt.Println()
}

func (w *Wizard) printHeader(title string) {
	w.clearScreen()
	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Printf("║  %-62s║\n", title)
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func (w *Wizard) readYesNo() bool {
	answer, _ := w.reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (w *Wizard) clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func (w *Wizard) waitForEnter() {
	w.reader.ReadString('\n')
}

func readPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// CheckFirstRun reports whether no config exists yet.
func CheckFirstRun() bool {
	_, err := os.Stat(filepath.Join(DefaultDataDir(), "sepsiscan.yaml"))
	return os.IsNotExist(err)
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "sepsiscan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "sepsiscan")
}
