package nlp

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLemmatizer keeps tests independent of the bundled dictionary.
type mapLemmatizer map[string]string

func (m mapLemmatizer) Lemma(w string) string {
	if l, ok := m[w]; ok {
		return l
	}
	return w
}

func newTestResources(t *testing.T) *Resources {
	t.Helper()
	r, err := NewResources(WithLemmatizer(mapLemmatizer{
		"dates":    "date",
		"payments": "payment",
		"amounts":  "amount",
		"numbers":  "number",
		"is":       "be",
	}))
	require.NoError(t, err)
	return r
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(newTestResources(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestKeyPhrases(t *testing.T) {
	r := newTestResources(t)

	t.Run("Should collect content words, noun phrases and verb objects", func(t *testing.T) {
		kp := r.KeyPhrases("Extract the payment due date")
		assert.Equal(t, []string{
			"extract",
			"payment",
			"due",
			"date",
			"payment due date",
			"extract payment due date",
		}, kp.Phrases)
		assert.Empty(t, kp.Entities)
	})

	t.Run("Should keep possessive objects together", func(t *testing.T) {
		kp := r.KeyPhrases("Find the customer's company name")
		assert.Contains(t, kp.Phrases, "customer's company name")
		assert.Contains(t, kp.Phrases, "find customer's company name")
		assert.NotContains(t, kp.Phrases, "the")
	})

	t.Run("Should include entities named in the instruction", func(t *testing.T) {
		kp := r.KeyPhrases("Get the amount paid to Acme Corp in March 2024")
		require.Len(t, kp.Entities, 2)
		assert.Equal(t, "Acme Corp", kp.Entities[0].Text)
		assert.Equal(t, LabelOrg, kp.Entities[0].Label)
		assert.Equal(t, "March 2024", kp.Entities[1].Text)
		assert.Contains(t, kp.Phrases, "acme corp")
		assert.Contains(t, kp.Phrases, "march 2024")
	})

	t.Run("Should deduplicate case-insensitively and drop single characters", func(t *testing.T) {
		kp := r.KeyPhrases("Find DATE date Date x")
		count := 0
		for _, p := range kp.Phrases {
			if p == "date" {
				count++
			}
			assert.Greater(t, len([]rune(p)), 1)
		}
		assert.Equal(t, 1, count)
	})
}

func TestSegment(t *testing.T) {
	r := newTestResources(t)

	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Should split on terminal punctuation",
			text: "Payment is due soon. Please pay on time! Thanks?",
			want: []string{"Payment is due soon.", "Please pay on time!", "Thanks?"},
		},
		{
			name: "Should not split after abbreviations or decimals",
			text: "Mr. Smith paid $1.50 to Acme Inc. today. Done.",
			want: []string{"Mr. Smith paid $1.50 to Acme Inc. today.", "Done."},
		},
		{
			name: "Should split on line breaks",
			text: "Invoice #12345\nTotal: $500\n\nThank you",
			want: []string{"Invoice #12345", "Total: $500", "Thank you"},
		},
		{
			name: "Should join wrapped lines",
			text: "The balance is payable\nwithin thirty days.",
			want: []string{"The balance is payable\nwithin thirty days."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, s := range r.segment(tc.text) {
				got = append(got, s.Text)
				assert.Equal(t, s.Text, tc.text[s.Start:s.End])
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecognize(t *testing.T) {
	r := newTestResources(t)

	cases := []struct {
		name  string
		text  string
		want  string
		label string
	}{
		{"Should find long dates", "Due on March 15, 2024 at the latest", "March 15, 2024", LabelDate},
		{"Should find numeric dates", "Dated 03/15/2024", "03/15/2024", LabelDate},
		{"Should find day-month dates", "Signed 1st of June 2023", "1st of June 2023", LabelDate},
		{"Should find times", "Deliver at 10:30 am", "10:30 am", LabelTime},
		{"Should find money", "Balance of $1,250.00 remains", "$1,250.00", LabelMoney},
		{"Should find money words", "It costs 40 euros", "40 euros", LabelMoney},
		{"Should find percentages", "A discount of 15% applies", "15%", LabelPercent},
		{"Should find quantities", "Shipped 20 kg of parts", "20 kg", LabelQuantity},
		{"Should find ordinals", "This is the third notice", "third", LabelOrdinal},
		{"Should find cardinals", "Order 4412 was sent", "4412", LabelCardinal},
		{"Should find organisations", "Billed by Globex Corporation last week", "Globex Corporation", LabelOrg},
		{"Should keep an abbreviation period inside a line", "Acme Inc. ships today", "Acme Inc.", LabelOrg},
		{"Should leave a closing full stop out of the name", "The vendor name is Acme Corp.", "Acme Corp", LabelOrg},
		{"Should leave a full stop before a line break out", "Billed to Acme Corp.\nThanks", "Acme Corp", LabelOrg},
		{"Should find people by title", "Signed by Dr. Jane Doe", "Jane Doe", LabelPerson},
		{"Should find people by first name", "Prepared by Maria Lopez", "Maria Lopez", LabelPerson},
		{"Should find places", "Shipped to Lagos from New York", "Lagos", LabelGPE},
		{"Should find locations", "Cross the Hudson River", "Hudson River", LabelLoc},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ents := r.recognize(tc.text)
			var found *Entity
			for i := range ents {
				if ents[i].Text == tc.want {
					found = &ents[i]
					break
				}
			}
			require.NotNil(t, found, "entities: %+v", ents)
			assert.Equal(t, tc.label, found.Label)
			assert.Equal(t, tc.want, tc.text[found.Start:found.End])
		})
	}

	t.Run("Should not tag a capitalised first word", func(t *testing.T) {
		assert.Empty(t, r.recognize("Payment is due"))
	})

	t.Run("Should not return overlapping entities", func(t *testing.T) {
		ents := r.recognize("Pay $500 by March 15, 2024 or 10 kg of gold to Acme Corp.")
		for i := 1; i < len(ents); i++ {
			assert.LessOrEqual(t, ents[i-1].End, ents[i].Start)
		}
	})
}

func TestRank(t *testing.T) {
	r := newTestResources(t)

	t.Run("Should sort by score and keep source order on ties", func(t *testing.T) {
		text := "The invoice is attached. Unrelated words follow. The invoice total is $500. Another invoice line."
		kp := KeyPhrases{Phrases: []string{"invoice", "total"}}
		ranked := r.Rank(text, kp)

		require.Len(t, ranked, 3)
		assert.Equal(t, "The invoice total is $500.", ranked[0].Text)
		assert.Equal(t, 7, ranked[0].Score)
		assert.Equal(t, "The invoice is attached.", ranked[1].Text)
		assert.Equal(t, "Another invoice line.", ranked[2].Text)
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
			assert.Greater(t, ranked[i].Score, 0)
		}
	})

	t.Run("Should give partial credit when all words appear out of order", func(t *testing.T) {
		kp := KeyPhrases{Phrases: []string{"due date"}}
		ranked := r.Rank("The date it is due is unknown", kp)
		require.Len(t, ranked, 1)
		assert.Equal(t, 2, ranked[0].Score)
	})

	t.Run("Should credit instruction entities", func(t *testing.T) {
		kp := KeyPhrases{Entities: []Entity{{Text: "Acme Corp", Label: LabelOrg}}}
		ranked := r.Rank("we owe acme corp money", kp)
		require.Len(t, ranked, 1)
		assert.Equal(t, 2, ranked[0].Score)
	})
}

func TestTargetLabels(t *testing.T) {
	r := newTestResources(t)

	t.Run("Should accumulate categories", func(t *testing.T) {
		got := r.TargetLabels("Find the date and amount")
		assert.Contains(t, got, LabelDate)
		assert.Contains(t, got, LabelTime)
		assert.Contains(t, got, LabelMoney)
		assert.Contains(t, got, LabelCardinal)
	})

	t.Run("Should match lemmas but not word fragments", func(t *testing.T) {
		assert.Contains(t, r.TargetLabels("List all dates"), LabelDate)
		assert.Empty(t, r.TargetLabels("Find the last update"))
	})
}

func TestExtract(t *testing.T) {
	x := newTestExtractor(t)

	t.Run("Should prefer a target entity", func(t *testing.T) {
		got := x.Extract("Payment is due on March 15, 2024 per the agreement.", "Extract the payment due date")
		require.Len(t, got, 1)
		assert.Equal(t, "March 15, 2024", got[0].Value)
		assert.Equal(t, LabelDate, got[0].EntityType)
	})

	t.Run("Should use the fallback bank when no entity fits", func(t *testing.T) {
		got := x.Extract("Your reference is INV-2024-0042 for this order.", "Find the order reference code")
		require.Len(t, got, 1)
		assert.Equal(t, "INV-2024-0042", got[0].Value)
		assert.Equal(t, LabelIdentifier, got[0].EntityType)
		assert.Equal(t, "Your reference is INV-2024-0042 for this order.", got[0].Context)
	})

	t.Run("Should return the best sentence when nothing else matches", func(t *testing.T) {
		got := x.Extract("Terms: payment within thirty days of delivery.", "Find the payment terms")
		require.Len(t, got, 1)
		assert.Equal(t, LabelSentence, got[0].EntityType)
		assert.Equal(t, got[0].Value, got[0].Context)
	})

	t.Run("Should return nothing without relevant sentences", func(t *testing.T) {
		assert.Empty(t, x.Extract("Completely unrelated text", "Find the payment terms"))
		assert.Empty(t, x.Extract("", "Find the payment terms"))
		assert.Empty(t, x.Extract("Some text", "   "))
	})
}

func TestByFallback(t *testing.T) {
	r := newTestResources(t)
	banks := r.activeBanks("Find the date, amount and reference number")
	require.Len(t, banks, 3)

	cases := []struct {
		name, text, want, label string
	}{
		{"Should take an amount written before a date", "Paid $40.00 on 03/15/2024 by card.", "$40.00", LabelMoney},
		{"Should take a date written before an amount", "On 03/15/2024 we paid $40.00 by card.", "03/15/2024", LabelDate},
		{"Should take an identifier written first", "Order AB-1234 was paid $40.00 on 03/15/2024.", "AB-1234", LabelIdentifier},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := byFallback([]RankedSentence{{Sentence: Sentence{Text: tc.text}, Score: 1}}, banks)
			require.True(t, ok)
			assert.Equal(t, tc.want, m.Value)
			assert.Equal(t, tc.label, m.EntityType)
			assert.Equal(t, tc.text, m.Context)
		})
	}

	t.Run("Should move to the next sentence only when nothing matches", func(t *testing.T) {
		ranked := []RankedSentence{
			{Sentence: Sentence{Text: "No values here."}, Score: 2},
			{Sentence: Sentence{Text: "Total $12 due."}, Score: 1},
		}
		m, ok := byFallback(ranked, banks)
		require.True(t, ok)
		assert.Equal(t, "$12", m.Value)
	})
}
