package epos

import (
	"fmt"
	"strings"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

type CutType string

const (
	CutFeed    CutType = "feed"
	CutNoFeed  CutType = "no_feed"
	CutReserve CutType = "reserve"
	CutPartial CutType = "partial"
)

const (
	DefaultFeedLines = 2
	TestFeedLines    = 3

	eposNamespace = "http://www.epson-pos.com/schemas/2011/03/epos-print"
	soapNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	lineBreak     = "&#10;"
)

// The replacer scans the input once, so the "&" of an entity it emits is never
// escaped again.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeMarkupText replaces the five XML special characters with entities.
func EscapeMarkupText(text string) string {
	return markupEscaper.Replace(text)
}

// WrapAsPrinterMarkup escapes bodyText and wraps it in an epos-print element
// with a text node, a feed of feedLines and a cut of cutType.
func WrapAsPrinterMarkup(bodyText string, feedLines int, cutType CutType) string {
	safe := strings.ReplaceAll(EscapeMarkupText(bodyText), "\n", lineBreak)
	return fmt.Sprintf(`<epos-print xmlns="%s">
  <text>%s%s</text>
  <feed line="%d"/>
  <cut type="%s"/>
</epos-print>`, eposNamespace, safe, lineBreak, feedLines, EscapeMarkupText(string(cutType)))
}

// WrapAsTransportEnvelope puts a markup fragment inside a SOAP envelope.
func WrapAsTransportEnvelope(markupFragment string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="%s">
  <s:Body>
    %s
  </s:Body>
</s:Envelope>`, soapNamespace, markupFragment)
}

// BuildTicketDocument renders the full kiosk ticket for req.
func BuildTicketDocument(req model.TicketRequest, now time.Time) string {
	return WrapAsTransportEnvelope(WrapAsPrinterMarkup(BuildReceiptBody(req, now), DefaultFeedLines, CutFeed))
}

// BuildBasicDocument renders free text as the printer-setup test ticket.
func BuildBasicDocument(text string) string {
	return WrapAsTransportEnvelope(WrapAsPrinterMarkup(text, TestFeedLines, CutPartial))
}
