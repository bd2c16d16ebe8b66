package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterQuoteAll(t *testing.T) {
	out, err := NewCSVExporter(true).Render(Dataset{
		Headers: []string{"Name", "Phone", "Church"},
		Rows: []map[string]string{
			{"Name": "Abel Tesfaye", "Phone": "0911223344", "Church": `Mekane "Yesus"`},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Phone,Church\n\"Abel Tesfaye\",\"0911223344\",\"Mekane \"\"Yesus\"\"\"\n", string(out))
}

func TestCSVExporterMinimalQuoting(t *testing.T) {
	out, err := NewCSVExporter(false).Render(Dataset{
		Headers: []string{"Order ID", "Payment Reference"},
		Rows:    []map[string]string{{"Order ID": "o-1", "Payment Reference": "FT24,001"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Order ID,Payment Reference\no-1,\"FT24,001\"\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter(true).Render(Dataset{})
	assert.Error(t, err)
}

func TestIDCardRenderer(t *testing.T) {
	cards := make([]IDCard, 9)
	for i := range cards {
		cards[i] = IDCard{ParticipantID: "BT001/2018", Name: "Hana Bekele", Church: "Hawassa Mulu Wongel", Grade: "grade-10", Location: "Hawassa"}
	}

	out, err := NewIDCardRenderer("Youth Leadership Camp").Render(cards)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewIDCardRenderer("x").Render(nil)
	assert.Error(t, err)
}

func TestGradeLabel(t *testing.T) {
	assert.Equal(t, "Grade 9", gradeLabel("grade-9"))
	assert.Equal(t, "other", gradeLabel("other"))
}
