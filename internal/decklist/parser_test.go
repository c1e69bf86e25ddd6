package decklist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Run("should parse leading count with x", func(t *testing.T) {
		row, err := ParseLine("4x Lightning Bolt")
		require.NoError(t, err)
		assert.Equal(t, "Lightning Bolt", row.Name)
		assert.Equal(t, 4, row.Quantity)
	})

	t.Run("should parse leading count without x", func(t *testing.T) {
		row, err := ParseLine("2 Llanowar Elves")
		require.NoError(t, err)
		assert.Equal(t, "Llanowar Elves", row.Name)
		assert.Equal(t, 2, row.Quantity)
	})

	t.Run("should default quantity to 1", func(t *testing.T) {
		row, err := ParseLine("Black Lotus")
		require.NoError(t, err)
		assert.Equal(t, "Black Lotus", row.Name)
		assert.Equal(t, 1, row.Quantity)
	})

	t.Run("should keep digits inside the name", func(t *testing.T) {
		row, err := ParseLine("Borrowing 100,000 Arrows")
		require.NoError(t, err)
		assert.Equal(t, "Borrowing 100,000 Arrows", row.Name)
		assert.Equal(t, 1, row.Quantity)
	})

	t.Run("should reject empty line", func(t *testing.T) {
		_, err := ParseLine("   ")
		assert.Error(t, err)
	})
}

func TestParseText(t *testing.T) {
	t.Run("should skip blanks and comments", func(t *testing.T) {
		input := strings.Join([]string{
			"# sideboard",
			"",
			"4x Lightning Bolt",
			"// comment",
			"1 Counterspell",
		}, "\n")

		rows, errs := ParseText(strings.NewReader(input))
		require.Empty(t, errs)
		require.Len(t, rows, 2)
		assert.Equal(t, "Lightning Bolt", rows[0].Name)
		assert.Equal(t, 3, rows[0].Line)
		assert.Equal(t, "Counterspell", rows[1].Name)
		assert.Equal(t, 5, rows[1].Line)
	})

	t.Run("bad row does not abort the rest", func(t *testing.T) {
		input := "4x Lightning Bolt\n0 Nothing\n2 Counterspell\n"

		rows, errs := ParseText(strings.NewReader(input))
		require.Len(t, rows, 2)
		require.Len(t, errs, 1)
		assert.Equal(t, 2, errs[0].Line)
		assert.Equal(t, "0 Nothing", errs[0].Input)
	})
}

func TestParseCSV(t *testing.T) {
	t.Run("should map columns by header including aliases", func(t *testing.T) {
		input := "Carta,Edicion,Cantidad,Condicion,Idioma,Precio,Trade\n" +
			"Lightning Bolt,Magic 2010,4,NM,es,1.50,si\n" +
			"Counterspell,,1,,,,\n"

		rows, errs := ParseCSV(strings.NewReader(input))
		require.Empty(t, errs)
		require.Len(t, rows, 2)

		assert.Equal(t, "Lightning Bolt", rows[0].Name)
		assert.Equal(t, "Magic 2010", rows[0].SetName)
		assert.Equal(t, 4, rows[0].Quantity)
		assert.Equal(t, "NM", rows[0].Condition)
		assert.Equal(t, "es", rows[0].Language)
		assert.Equal(t, 1.50, rows[0].Price)
		assert.True(t, rows[0].ForTrade)

		assert.Equal(t, "Counterspell", rows[1].Name)
		assert.Equal(t, 1, rows[1].Quantity)
		assert.False(t, rows[1].ForTrade)
	})

	t.Run("should fall back to decklist lines without header", func(t *testing.T) {
		input := "4x Lightning Bolt,Magic 2010\nCounterspell\n"

		rows, errs := ParseCSV(strings.NewReader(input))
		require.Empty(t, errs)
		require.Len(t, rows, 2)
		assert.Equal(t, "Lightning Bolt", rows[0].Name)
		assert.Equal(t, "Magic 2010", rows[0].SetName)
		assert.Equal(t, 4, rows[0].Quantity)
		assert.Equal(t, "Counterspell", rows[1].Name)
	})

	t.Run("should strip dollar sign from prices", func(t *testing.T) {
		input := "name,price\nBlack Lotus,$25000\n"

		rows, errs := ParseCSV(strings.NewReader(input))
		require.Empty(t, errs)
		require.Len(t, rows, 1)
		assert.Equal(t, 25000.0, rows[0].Price)
	})

	t.Run("should collect per-row errors", func(t *testing.T) {
		input := "name,quantity\nLightning Bolt,four\nCounterspell,2\n"

		rows, errs := ParseCSV(strings.NewReader(input))
		require.Len(t, rows, 1)
		require.Len(t, errs, 1)
		assert.Equal(t, "Counterspell", rows[0].Name)
		assert.Contains(t, errs[0].Reason, "invalid quantity")
	})

	t.Run("should keep line numbers stable past an unreadable row", func(t *testing.T) {
		input := "name,quantity\n" +
			"Lightning Bolt,2\n" +
			"bad \"quote,1\n" +
			"Hill Giant,1\n"

		rows, errs := ParseCSV(strings.NewReader(input))
		require.Len(t, errs, 1)
		assert.Equal(t, 3, errs[0].Line)

		require.Len(t, rows, 2)
		assert.Equal(t, "Lightning Bolt", rows[0].Name)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, "Hill Giant", rows[1].Name)
		assert.Equal(t, 4, rows[1].Line)
	})

	t.Run("should handle quoted names with commas", func(t *testing.T) {
		input := "name,quantity\n\"Borrowing 100,000 Arrows\",2\n"

		rows, errs := ParseCSV(strings.NewReader(input))
		require.Empty(t, errs)
		require.Len(t, rows, 1)
		assert.Equal(t, "Borrowing 100,000 Arrows", rows[0].Name)
		assert.Equal(t, 2, rows[0].Quantity)
	})
}
