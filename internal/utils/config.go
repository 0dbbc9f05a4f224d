package utils

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

const (
	DefaultConfigFile = "config/config.json"
	DefaultEnvFile    = ".env"
	DefaultHTTPAddr   = ":8090"
	DefaultDataDir    = "data"
	DefaultAPIURL     = "https://api.kafena.mx"
	DefaultWSURL      = "wss://ws.kafena.mx/agent"
)

// DefaultConfig is the configuration used when no file exists yet.
func DefaultConfig(version string) model.Config {
	return model.Config{
		AppVersion:      version,
		HTTPAddr:        DefaultHTTPAddr,
		RunMigrations:   true,
		DataDir:         DefaultDataDir,
		LogLevel:        "info",
		SerializePrints: true,
		Printer:         model.DefaultPrinterConfig(),
		Ticket:          model.DefaultTicketDefaults(),
	}
}

// LoadConfig reads configFile over the defaults, then loads envFile into the
// environment when it exists, then applies environment overrides. A missing
// config file is not an error.
func LoadConfig(configFile, envFile, version string) (model.Config, error) {
	config := DefaultConfig(version)

	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("parsing %s: %w", configFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return config, fmt.Errorf("reading %s: %w", configFile, err)
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return config, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	applyEnv(&config)
	config.Printer = config.Printer.WithDefaults()
	if version != "" {
		config.AppVersion = version
	}

	return config, nil
}

func applyEnv(c *model.Config) {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.RunMigrations = getBool("RUN_MIGRATIONS", c.RunMigrations)
	c.APIURL = getenv("API_URL", c.APIURL)
	c.WSURL = getenv("WS_URL", c.WSURL)
	c.APIKey = getenv("API_KEY", c.APIKey)
	c.DataDir = getenv("DATA_DIR", c.DataDir)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.SerializePrints = getBool("SERIALIZE_PRINTS", c.SerializePrints)
	c.ChromePath = getenv("CHROME_PATH", c.ChromePath)
	c.Ticket.TimeZone = getenv("TICKET_TIMEZONE", c.Ticket.TimeZone)
	c.Printer.Host = getenv("PRINTER_HOST", c.Printer.Host)
	c.Printer.DeviceID = getenv("PRINTER_DEVICE_ID", c.Printer.DeviceID)
	c.Printer.TimeoutMillis = getInt("PRINTER_TIMEOUT_MS", c.Printer.TimeoutMillis)
}

// SaveConfig writes config as indented JSON, creating its directory.
func SaveConfig(configFile string, config model.Config) error {
	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configFile, data, 0644)
}

// SetupConfig asks for the connection settings on out, reading answers from
// in. An empty answer keeps the current value.
func SetupConfig(in io.Reader, out io.Writer, config model.Config) model.Config {
	fmt.Fprintln(out, "--- Initial Setup ---")
	reader := bufio.NewReader(in)

	config.APIURL = prompt(reader, out, "Enter API URL", firstSet(config.APIURL, DefaultAPIURL))
	config.WSURL = prompt(reader, out, "Enter WebSocket URL", firstSet(config.WSURL, DefaultWSURL))
	config.APIKey = prompt(reader, out, "Enter Server API Key", config.APIKey)
	config.TenantID = promptInt(reader, out, "Enter Tenant ID", config.TenantID)
	config.RestaurantID = promptInt(reader, out, "Enter Restaurant ID", config.RestaurantID)

	config.Printer.Name = prompt(reader, out, "Printer name (e.g., Caja)", config.Printer.Name)
	config.Printer.Host = prompt(reader, out, "Printer IP address", config.Printer.Host)
	config.Printer.DeviceID = prompt(reader, out, "Printer device ID", firstSet(config.Printer.DeviceID, model.DefaultDeviceID))
	config.Printer.TenantID = config.TenantID
	config.Printer.RestaurantID = config.RestaurantID

	return config
}

// Confirm asks a y/n question.
func Confirm(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/n): ", question)
	ans, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(ans)) == "y"
}

func prompt(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current != "" {
		fmt.Fprintf(out, "%s (default: %s): ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return current
	}
	return answer
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	answer := prompt(reader, out, label, strconv.Itoa(current))
	if v, err := strconv.Atoi(answer); err == nil {
		return v
	}
	return current
}

func firstSet(value, def string) string {
	if value != "" {
		return value
	}
	return def
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
