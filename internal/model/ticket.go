package model

// TicketLine is one ordered product on a ticket. Prices are in cents.
type TicketLine struct {
	Quantity       int    `json:"quantity"`
	ProductName    string `json:"productName"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

func (l TicketLine) LineTotalCents() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

type TicketRequest struct {
	HeaderText     string       `json:"headerText"`
	Subtitle       string       `json:"subtitle"`
	OrderReference string       `json:"orderReference"`
	Lines          []TicketLine `json:"lines"`
	PaymentNote    string       `json:"paymentNote"`
	TaglineText    string       `json:"taglineText"`
	DeviceID       string       `json:"deviceId,omitempty"`
	TimeoutMillis  int          `json:"timeoutMs,omitempty"`
	HostAddress    string       `json:"hostAddress,omitempty"`
}

func (r TicketRequest) TotalCents() int64 {
	var total int64
	for _, l := range r.Lines {
		total += l.LineTotalCents()
	}
	return total
}

// PrinterResponse is the normalized reply of one transmission attempt.
type PrinterResponse struct {
	Succeeded    bool   `json:"succeeded"`
	ResultCode   string `json:"resultCode"`
	DeviceStatus *int   `json:"deviceStatus"`
	RawBody      string `json:"rawBody"`
}
