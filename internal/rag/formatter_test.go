// File path: internal/rag/formatter_test.go
package rag

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDatasetDeterministic(t *testing.T) {
	raw := []byte(`{"b": {"x": 1, "y": 2}, "a": [1, 2, 3], "c": "teks"}`)
	first, err := FormatDataset("global", raw)
	require.NoError(t, err)
	second, err := FormatDataset("global", raw)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFormatDatasetArrayRoot(t *testing.T) {
	raw := []byte(`[{"nama": "warung", "rating": 4}, {"nama": "kedai", "rating": 3}]`)
	docs, err := FormatDataset("global", raw)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, 0, docs[0].Metadata[metaIndex])
	require.Equal(t, 1, docs[1].Metadata[metaIndex])
	require.Contains(t, docs[0].PageContent, "nama: warung")
	require.Contains(t, docs[1].PageContent, "rating: 3")
	for _, doc := range docs {
		require.Equal(t, "global", doc.Metadata[metaScope])
	}
}

func TestFormatDatasetPositiveFactors(t *testing.T) {
	raw := []byte(`{"faktor_positif_top10":[{"kata":"enak","jumlah":12}]}`)
	docs, err := FormatDataset("global", raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Contains(t, docs[0].PageContent, "enak")
	require.Contains(t, docs[0].PageContent, "12")
	require.Equal(t, keyPositiveFactors, docs[0].Metadata[metaType])
}

func TestFormatDatasetKnownKeys(t *testing.T) {
	raw := []byte(`{
		"ringkasan_keseluruhan": {
			"Positif": {"jumlah": 60, "persentase": 60},
			"Netral": {"jumlah": 30, "persentase": 30},
			"Negatif": {"jumlah": 10, "persentase": 10}
		},
		"sentimen_per_kategori": {
			"Makanan": {"total": 100, "positif": 70, "netral": 20, "negatif": 10, "rasio_positif": 70}
		},
		"sentimen_per_brand": {
			"Kopi Kenangan": {"total": 50, "positif": 40, "netral": 5, "negatif": 5, "rasio_positif": 80, "rasio_netral": 10, "rasio_negatif": 10},
			"Ayam Geprek": {"total": 20, "positif": 5, "netral": 5, "negatif": 10, "rasio_positif": 25, "rasio_netral": 25, "rasio_negatif": 50}
		},
		"engagement_per_sentimen": {
			"Positif": {"avg_engagement": 10, "avg_likes": 8, "avg_shares": 2},
			"Netral": {"avg_engagement": 5, "avg_likes": 4, "avg_shares": 1},
			"Negatif": {"avg_engagement": 15, "avg_likes": 12, "avg_shares": 3}
		},
		"faktor_negatif_top10": [{"kata": "mahal", "jumlah": 7}]
	}`)
	docs, err := FormatDataset("global", raw)
	require.NoError(t, err)
	require.Len(t, docs, 5)

	overview := docs[0].PageContent
	require.Contains(t, overview, "Total data yang dianalisis mencakup 100 interaksi")
	require.Contains(t, overview, "Sentimen dominan adalah Positif.")

	category := docs[1].PageContent
	require.Contains(t, category, "Kategori Makanan")
	require.Contains(t, category, "Perlu perhatian karena rasio negatif mencapai 10.0%")

	// All brands land in one combined document, brand keys sorted.
	brands := docs[2].PageContent
	require.Contains(t, brands, "Analisis Sentimen Seluruh Brand")
	require.Contains(t, brands, "Analisis Brand Kopi Kenangan")
	require.Contains(t, brands, "Analisis Brand Ayam Geprek")
	require.Less(t, strings.Index(brands, "Ayam Geprek"), strings.Index(brands, "Kopi Kenangan"))
	require.Contains(t, brands, "Brand ini memiliki citra yang cukup kuat.")
	require.Contains(t, brands, "Brand ini menghadapi tantangan sentimen.")

	engagement := docs[3].PageContent
	require.Contains(t, engagement, "komentar negatif cenderung memancing interaksi publik yang lebih tinggi")

	factors := docs[4].PageContent
	require.Contains(t, factors, "Sentimen Negatif (Top 10)")
	require.Contains(t, factors, `Kata kunci "mahal": Muncul sebanyak 7 kali.`)
}

func TestFormatDatasetGenericFallback(t *testing.T) {
	raw := []byte(`{
		"judul": "laporan",
		"angka": 42,
		"daftar": ["a", "b", "c"],
		"tabel": [{"k": 1, "v": "x"}, {"k": 2, "v": "y"}],
		"dalam": {"kunci": "nilai"}
	}`)
	docs, err := FormatDataset("global", raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	text := docs[0].PageContent
	require.Contains(t, text, "judul: laporan")
	require.Contains(t, text, "angka: 42")
	require.Contains(t, text, "daftar: a, b, c")
	require.Contains(t, text, "k: 1 | v: x")
	require.Contains(t, text, "dalam:\n  kunci: nilai")
}

func TestFormatDatasetMalformed(t *testing.T) {
	_, err := FormatDataset("global", []byte(`{"broken":`))
	require.ErrorIs(t, err, ErrDataLoad)

	_, err = FormatDataset("global", []byte(`"just a string"`))
	require.ErrorIs(t, err, ErrDataLoad)
}

func TestFormatSentiment(t *testing.T) {
	result := SentimentResult{
		Summary: SentimentSummary{
			Percentage: AspectBreakdown{
				Price:       SentimentCounts{Neutral: "40", Negative: "20", Positive: "40"},
				Service:     SentimentCounts{Neutral: "30", Negative: "30", Positive: "40"},
				FoodQuality: SentimentCounts{Neutral: "10", Negative: "10", Positive: "80"},
			},
			Distribution: AspectBreakdown{
				Price: SentimentCounts{Neutral: "4", Negative: "2", Positive: "4"},
			},
			OverallSentiment: SentimentCounts{Neutral: "10", Negative: "5", Positive: "25"},
			RelevanceAnalysis: RelevanceAnalysis{
				RelevantComments:        "35",
				NonRelevantComments:     "5",
				RelevantRatioPercent:    "87.5",
				NonRelevantRatioPercent: "12.5",
			},
		},
		SentimentTrend: SentimentTrend{
			Granularity: "daily",
			Trend: []TrendPoint{
				{Date: "2025-01-01", Neutral: "3", Negative: "1", Positive: "6"},
				{Date: "2025-01-02", Neutral: "2", Negative: "2", Positive: "8"},
			},
		},
	}
	docs := FormatSentiment("11111111-2222-3333-4444-555555555555", result)
	require.Len(t, docs, 2)

	summary := docs[0]
	require.Equal(t, "absa_summary", summary.Metadata[metaType])
	require.Equal(t, "11111111-2222-3333-4444-555555555555", summary.Metadata[metaScope])
	require.Contains(t, summary.PageContent, "Kualitas Makanan: Netral 10%, Negatif 10%, Positif 80%")
	require.Contains(t, summary.PageContent, "Komentar Relevan: 35 (87.5%)")

	trend := docs[1]
	require.Equal(t, "absa_trend", trend.Metadata[metaType])
	require.Contains(t, trend.PageContent, "Granularity: daily")
	require.Contains(t, trend.PageContent, "Tanggal 2025-01-02: Netral 2, Negatif 2, Positif 8")
}

func TestDecodeSentimentResult(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"summary": map[string]any{
			"overall_sentiment": map[string]any{"neutral": 1, "negative": 2, "positive": 3},
		},
		"sentiment_trend": map[string]any{"granularity": "daily", "trend": []any{}},
	})
	require.NoError(t, err)

	result, ok := decodeSentimentResult(raw)
	require.True(t, ok)
	require.Equal(t, json.Number("3"), result.Summary.OverallSentiment.Positive)

	_, ok = decodeSentimentResult([]byte(`{"summary": {}}`))
	require.False(t, ok)
	_, ok = decodeSentimentResult([]byte(`[1, 2, 3]`))
	require.False(t, ok)
}
