package model

import "time"

const (
	DefaultDeviceID      = "local_printer"
	DefaultTimeoutMillis = 60000
)

// --- Configuration Structures ---

type Config struct {
	AppVersion   string `json:"appVersion"`
	APIURL       string `json:"apiUrl"`
	WSURL        string `json:"wsUrl"`
	APIKey       string `json:"apiKey"`
	TenantID     int    `json:"tenantId"`
	RestaurantID int    `json:"restaurantId"`

	HTTPAddr        string `json:"httpAddr"`
	DatabaseURL     string `json:"databaseUrl"`
	RunMigrations   bool   `json:"runMigrations"`
	DataDir         string `json:"dataDir"`
	LogLevel        string `json:"logLevel"`
	SerializePrints bool   `json:"serializePrints"`
	ChromePath      string `json:"chromePath"`

	Printer PrinterConfig  `json:"printer"`
	Ticket  TicketDefaults `json:"ticket"`
}

// TicketDefaults are the fixed texts printed on every kiosk ticket.
type TicketDefaults struct {
	HeaderText  string `json:"headerText"`
	Subtitle    string `json:"subtitle"`
	PaymentNote string `json:"paymentNote"`
	TaglineText string `json:"taglineText"`
	TimeZone    string `json:"timeZone"`
	FeedLines   int    `json:"feedLines"`
	CutType     string `json:"cutType"`
}

func DefaultTicketDefaults() TicketDefaults {
	return TicketDefaults{
		HeaderText:  "CC La Cafeteria",
		Subtitle:    "Kiosko",
		PaymentNote: "PAGA EN CAJA",
		TaglineText: "Operación impecable, cada día.",
		TimeZone:    "America/Chihuahua",
		FeedLines:   2,
		CutType:     "feed",
	}
}

// PrinterConfig describes the single ePOS printer the agent drives.
type PrinterConfig struct {
	Name          string    `json:"name"`
	Host          string    `json:"host"`
	DeviceID      string    `json:"deviceId"`
	TimeoutMillis int       `json:"timeoutMs"`
	Enabled       bool      `json:"enabled"`
	TenantID      int       `json:"tenantId,omitempty"`
	RestaurantID  int       `json:"restaurantId,omitempty"`
	AgentKey      string    `json:"agent_key,omitempty"` // Assigned by server
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

func DefaultPrinterConfig() PrinterConfig {
	return PrinterConfig{
		DeviceID:      DefaultDeviceID,
		TimeoutMillis: DefaultTimeoutMillis,
		Enabled:       true,
	}
}

// WithDefaults fills the fields the setup screen leaves blank.
func (p PrinterConfig) WithDefaults() PrinterConfig {
	if p.DeviceID == "" {
		p.DeviceID = DefaultDeviceID
	}
	if p.TimeoutMillis == 0 {
		p.TimeoutMillis = DefaultTimeoutMillis
	}
	return p
}

// Label is the name used in log lines.
func (p PrinterConfig) Label() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Host != "" {
		return p.Host
	}
	return p.DeviceID
}
