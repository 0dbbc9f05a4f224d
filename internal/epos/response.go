package epos

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

const successMarker = `success="true"`

var (
	codePattern   = regexp.MustCompile(`(?:^|\s)code="([^"]*)"`)
	statusPattern = regexp.MustCompile(`(?:^|\s)status="([^"]*)"`)
)

// ParseResponse reads the few attributes the agent cares about from a device
// reply. It does not validate the XML: anything without the success marker,
// including an empty or garbled body, is reported as not succeeded.
func ParseResponse(rawXMLText string) model.PrinterResponse {
	resp := model.PrinterResponse{
		Succeeded: strings.Contains(rawXMLText, successMarker),
		RawBody:   rawXMLText,
	}

	if m := codePattern.FindStringSubmatch(rawXMLText); m != nil {
		resp.ResultCode = m[1]
	}

	if m := statusPattern.FindStringSubmatch(rawXMLText); m != nil {
		if status, err := strconv.Atoi(strings.TrimSpace(m[1])); err == nil {
			resp.DeviceStatus = &status
		}
	}

	return resp
}
