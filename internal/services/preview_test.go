package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

func TestPreviewer_RenderTicketHTML(t *testing.T) {
	svc := newTestService(&memLogStore{}, true)
	previewer := NewPreviewer(svc, "")

	req := sampleTicket()
	req.Lines = append(req.Lines, model.TicketLine{Quantity: 1, ProductName: "Pan <dulce>", UnitPriceCents: 900})

	html, err := previewer.RenderTicketHTML(req)
	require.NoError(t, err)

	assert.Contains(t, html, `<div id="ticket">`)
	assert.Contains(t, html, "CC La Cafeteria")
	assert.Contains(t, html, "#A-102")
	assert.Contains(t, html, "Pan &lt;dulce&gt;")
	assert.NotContains(t, html, "Pan <dulce>")
	assert.Contains(t, html, "3 artículo(s) · total $101.00")
	assert.Contains(t, html, "width: 72mm")
}
