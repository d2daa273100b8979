// File path: internal/rag/formatter.go
package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/schema"
)

// Metadata keys attached to formatted documents.
const (
	metaScope    = "scope"
	metaIndex    = "index"
	metaType     = "type"
	metaCategory = "category"
)

// Known analytic keys of the UMKM reference dataset. Each renders into a
// dedicated Indonesian paragraph; anything else goes through the generic
// structural renderer.
const (
	keyOverview        = "ringkasan_keseluruhan"
	keyCategorySent    = "sentimen_per_kategori"
	keyBrandSent       = "sentimen_per_brand"
	keyEngagement      = "engagement_per_sentimen"
	keyPositiveFactors = "faktor_positif_top10"
	keyNegativeFactors = "faktor_negatif_top10"
)

// FormatDataset turns raw dataset JSON into retrievable documents. A sequence
// root yields one document per element; a mapping root is matched against the
// known analytic keys, falling back to a single generically rendered document.
// Rendering is deterministic: map keys are sorted and numbers are kept verbatim.
func FormatDataset(scopeKey string, raw []byte) ([]schema.Document, error) {
	value, err := decodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}

	if items, ok := value.([]interface{}); ok {
		docs := make([]schema.Document, 0, len(items))
		for i, item := range items {
			docs = append(docs, schema.Document{
				PageContent: renderGeneric(item),
				Metadata: map[string]any{
					metaScope: scopeKey,
					metaIndex: i,
				},
			})
		}
		return docs, nil
	}

	root, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: dataset root must be an object or array", ErrDataLoad)
	}

	var docs []schema.Document
	appendDoc := func(content string, meta map[string]any) {
		meta[metaScope] = scopeKey
		docs = append(docs, schema.Document{PageContent: content, Metadata: meta})
	}

	if overview, ok := root[keyOverview]; ok {
		appendDoc(formatOverview(overview), map[string]any{
			metaType: keyOverview, metaCategory: "overview",
		})
	}
	if categories, ok := root[keyCategorySent]; ok {
		appendDoc(formatCategorySentiment(categories), map[string]any{
			metaType: keyCategorySent, metaCategory: "category_analysis",
		})
	}
	if brands, ok := root[keyBrandSent]; ok {
		appendDoc(formatBrands(brands), map[string]any{
			metaType: keyBrandSent, metaCategory: "brand",
		})
	}
	if engagement, ok := root[keyEngagement]; ok {
		appendDoc(formatEngagement(engagement), map[string]any{
			metaType: keyEngagement, metaCategory: "engagement",
		})
	}
	if factors, ok := root[keyPositiveFactors]; ok {
		appendDoc(formatFactors("Positif", factors), map[string]any{
			metaType: keyPositiveFactors, metaCategory: "factors", "sentiment": "positif",
		})
	}
	if factors, ok := root[keyNegativeFactors]; ok {
		appendDoc(formatFactors("Negatif", factors), map[string]any{
			metaType: keyNegativeFactors, metaCategory: "factors", "sentiment": "negatif",
		})
	}

	if len(docs) == 0 {
		appendDoc(renderGeneric(root), map[string]any{})
	}
	return docs, nil
}

// SentimentResult is the pre-structured per-session analysis shape produced by
// the upstream aspect-based sentiment pipeline.
type SentimentResult struct {
	Summary        SentimentSummary `json:"summary"`
	SentimentTrend SentimentTrend   `json:"sentiment_trend"`
}

type SentimentSummary struct {
	Percentage        AspectBreakdown   `json:"percentage"`
	Distribution      AspectBreakdown   `json:"distribution"`
	OverallSentiment  SentimentCounts   `json:"overall_sentiment"`
	RelevanceAnalysis RelevanceAnalysis `json:"relevance_analysis"`
}

type AspectBreakdown struct {
	Price       SentimentCounts `json:"price"`
	Service     SentimentCounts `json:"service"`
	FoodQuality SentimentCounts `json:"food_quality"`
}

type SentimentCounts struct {
	Neutral  json.Number `json:"neutral"`
	Negative json.Number `json:"negative"`
	Positive json.Number `json:"positive"`
}

type RelevanceAnalysis struct {
	RelevantComments        json.Number `json:"relevant_comments"`
	NonRelevantComments     json.Number `json:"non_relevant_comments"`
	RelevantRatioPercent    json.Number `json:"relevant_ratio_percent"`
	NonRelevantRatioPercent json.Number `json:"non_relevant_ratio_percent"`
}

type SentimentTrend struct {
	Granularity string       `json:"granularity"`
	Trend       []TrendPoint `json:"trend"`
}

type TrendPoint struct {
	Date     string      `json:"date"`
	Neutral  json.Number `json:"neutral"`
	Negative json.Number `json:"negative"`
	Positive json.Number `json:"positive"`
}

// decodeSentimentResult reports whether the raw payload carries the
// pre-structured sentiment shape (summary plus trend) and decodes it if so.
func decodeSentimentResult(raw []byte) (SentimentResult, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return SentimentResult{}, false
	}
	if _, ok := probe["summary"]; !ok {
		return SentimentResult{}, false
	}
	if _, ok := probe["sentiment_trend"]; !ok {
		return SentimentResult{}, false
	}
	var result SentimentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return SentimentResult{}, false
	}
	return result, true
}

// FormatSentiment renders a session's sentiment result into exactly two
// documents, one summary and one trend, both tagged with the session id.
func FormatSentiment(scraperID string, result SentimentResult) []schema.Document {
	s := result.Summary
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analisis Sentimen Ringkasan (Scraper ID: %s):\n\n", scraperID)
	sb.WriteString("Persentase Sentimen:\n")
	writeAspectLine(&sb, "Harga", s.Percentage.Price)
	writeAspectLine(&sb, "Layanan", s.Percentage.Service)
	writeAspectLine(&sb, "Kualitas Makanan", s.Percentage.FoodQuality)
	sb.WriteString("\nDistribusi Komentar:\n")
	writeAspectCounts(&sb, "Harga", s.Distribution.Price)
	writeAspectCounts(&sb, "Layanan", s.Distribution.Service)
	writeAspectCounts(&sb, "Kualitas Makanan", s.Distribution.FoodQuality)
	fmt.Fprintf(&sb, "\nSentimen Keseluruhan: Netral %s, Negatif %s, Positif %s\n",
		numStr(s.OverallSentiment.Neutral), numStr(s.OverallSentiment.Negative), numStr(s.OverallSentiment.Positive))
	sb.WriteString("\nAnalisis Relevansi:\n")
	fmt.Fprintf(&sb, "- Komentar Relevan: %s (%s%%)\n",
		numStr(s.RelevanceAnalysis.RelevantComments), numStr(s.RelevanceAnalysis.RelevantRatioPercent))
	fmt.Fprintf(&sb, "- Komentar Tidak Relevan: %s (%s%%)",
		numStr(s.RelevanceAnalysis.NonRelevantComments), numStr(s.RelevanceAnalysis.NonRelevantRatioPercent))

	var tb strings.Builder
	fmt.Fprintf(&tb, "Tren Sentimen (Scraper ID: %s) (Granularity: %s):\n",
		scraperID, result.SentimentTrend.Granularity)
	for _, point := range result.SentimentTrend.Trend {
		fmt.Fprintf(&tb, "- Tanggal %s: Netral %s, Negatif %s, Positif %s\n",
			point.Date, numStr(point.Neutral), numStr(point.Negative), numStr(point.Positive))
	}

	return []schema.Document{
		{
			PageContent: sb.String(),
			Metadata:    map[string]any{metaScope: scraperID, "scraperId": scraperID, metaType: "absa_summary"},
		},
		{
			PageContent: strings.TrimRight(tb.String(), "\n"),
			Metadata:    map[string]any{metaScope: scraperID, "scraperId": scraperID, metaType: "absa_trend"},
		},
	}
}

func writeAspectLine(sb *strings.Builder, label string, c SentimentCounts) {
	fmt.Fprintf(sb, "- %s: Netral %s%%, Negatif %s%%, Positif %s%%\n",
		label, numStr(c.Neutral), numStr(c.Negative), numStr(c.Positive))
}

func writeAspectCounts(sb *strings.Builder, label string, c SentimentCounts) {
	fmt.Fprintf(sb, "- %s: Netral %s, Negatif %s, Positif %s\n",
		label, numStr(c.Neutral), numStr(c.Negative), numStr(c.Positive))
}

func formatOverview(value interface{}) string {
	m := asMap(value)
	positif := asMap(m["Positif"])
	netral := asMap(m["Netral"])
	negatif := asMap(m["Negatif"])
	total := fieldNum(positif, "jumlah") + fieldNum(netral, "jumlah") + fieldNum(negatif, "jumlah")

	var sb strings.Builder
	sb.WriteString("Ringkasan Analisis Keseluruhan UMKM:\n")
	fmt.Fprintf(&sb, "Total data yang dianalisis mencakup %s interaksi / Mentions.\n", formatFloat(total))
	sb.WriteString("Distribusi sentimen:\n")
	fmt.Fprintf(&sb, "- Positif: %s%% (%s data)\n", fieldStr(positif, "persentase"), fieldStr(positif, "jumlah"))
	fmt.Fprintf(&sb, "- Netral: %s%% (%s data)\n", fieldStr(netral, "persentase"), fieldStr(netral, "jumlah"))
	fmt.Fprintf(&sb, "- Negatif: %s%% (%s data)\n", fieldStr(negatif, "persentase"), fieldStr(negatif, "jumlah"))
	fmt.Fprintf(&sb, "\nSentimen dominan adalah %s.", dominantSentiment(positif, netral, negatif))
	return sb.String()
}

func dominantSentiment(positif, netral, negatif map[string]interface{}) string {
	pos := fieldNum(positif, "jumlah")
	neu := fieldNum(netral, "jumlah")
	neg := fieldNum(negatif, "jumlah")
	switch {
	case pos > neu && pos > neg:
		return "Positif"
	case neg > pos && neg > neu:
		return "Negatif"
	default:
		return "Netral"
	}
}

func formatCategorySentiment(value interface{}) string {
	m := asMap(value)
	var sb strings.Builder
	sb.WriteString("Analisis Sentimen per Kategori Produk:\n")
	for _, category := range sortedKeys(m) {
		stats := asMap(m[category])
		fmt.Fprintf(&sb, "- Kategori %s: Memiliki total %s ulasan. Sentimen positif %s, netral %s, dan negatif %s. Rasio positif: %s%%.\n",
			category, fieldStr(stats, "total"), fieldStr(stats, "positif"),
			fieldStr(stats, "netral"), fieldStr(stats, "negatif"), fieldStr(stats, "rasio_positif"))
		if total := fieldNum(stats, "total"); total > 0 {
			negativeRatio := fieldNum(stats, "negatif") / total * 100
			if negativeRatio > 5 {
				fmt.Fprintf(&sb, "  (Catatan: Perlu perhatian karena rasio negatif mencapai %.1f%%).\n", negativeRatio)
			}
		}
	}
	return sb.String()
}

func formatBrands(value interface{}) string {
	m := asMap(value)
	var sb strings.Builder
	sb.WriteString("Analisis Sentimen Seluruh Brand:\n\n")
	for _, brand := range sortedKeys(m) {
		stats := asMap(m[brand])
		fmt.Fprintf(&sb, "Analisis Brand %s:\n", brand)
		fmt.Fprintf(&sb, "Brand ini memiliki total penyebutan sebanyak %s.\n", fieldStr(stats, "total"))
		sb.WriteString("Profil sentimen brand ini adalah:\n")
		fmt.Fprintf(&sb, "- Positif: %s (%s%%)\n", fieldStr(stats, "positif"), fieldStr(stats, "rasio_positif"))
		fmt.Fprintf(&sb, "- Netral: %s (%s%%)\n", fieldStr(stats, "netral"), fieldStr(stats, "rasio_netral"))
		fmt.Fprintf(&sb, "- Negatif: %s (%s%%)\n", fieldStr(stats, "negatif"), fieldStr(stats, "rasio_negatif"))
		if fieldNum(stats, "positif") > fieldNum(stats, "negatif")*2 {
			sb.WriteString("\nBrand ini memiliki citra yang cukup kuat.\n---\n")
		} else {
			sb.WriteString("\nBrand ini menghadapi tantangan sentimen.\n---\n")
		}
	}
	return sb.String()
}

func formatEngagement(value interface{}) string {
	m := asMap(value)
	positif := asMap(m["Positif"])
	netral := asMap(m["Netral"])
	negatif := asMap(m["Negatif"])

	var sb strings.Builder
	sb.WriteString("Analisis Engagement (Interaksi Pengguna) Berdasarkan Sentimen:\n")
	writeEngagementLine(&sb, "Positif", positif)
	writeEngagementLine(&sb, "Netral", netral)
	writeEngagementLine(&sb, "Negatif", negatif)
	if fieldNum(negatif, "avg_engagement") > fieldNum(positif, "avg_engagement") {
		sb.WriteString("\nTerlihat bahwa komentar negatif cenderung memancing interaksi publik yang lebih tinggi.")
	}
	return sb.String()
}

func writeEngagementLine(sb *strings.Builder, label string, stats map[string]interface{}) {
	fmt.Fprintf(sb, "- Komentar %s: Rata-rata engagement %s (Likes: %s, Shares: %s).\n",
		label, fieldStr(stats, "avg_engagement"), fieldStr(stats, "avg_likes"), fieldStr(stats, "avg_shares"))
}

func formatFactors(sentiment string, value interface{}) string {
	factors, _ := value.([]interface{})
	var sb strings.Builder
	fmt.Fprintf(&sb, "Faktor-faktor Utama Pendorong Sentimen %s (Top 10):\n", sentiment)
	for i, factor := range factors {
		m := asMap(factor)
		fmt.Fprintf(&sb, "%d. Kata kunci %q: Muncul sebanyak %s kali.\n",
			i+1, fieldStr(m, "kata"), fieldStr(m, "jumlah"))
	}
	return sb.String()
}

// renderGeneric is the structural fallback for arbitrary JSON shapes: scalar
// fields as "key: value", nested mappings as indented blocks, scalar sequences
// comma-joined, sequences of mappings one "k: v | k: v" line per element.
func renderGeneric(value interface{}) string {
	var sb strings.Builder
	renderValue(&sb, value, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func renderValue(sb *strings.Builder, value interface{}, depth int) {
	switch v := value.(type) {
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			renderField(sb, key, v[key], depth)
		}
	case []interface{}:
		for _, item := range v {
			indent(sb, depth)
			sb.WriteString(renderScalarOrSummary(item))
			sb.WriteString("\n")
		}
	default:
		indent(sb, depth)
		sb.WriteString(scalarString(value))
		sb.WriteString("\n")
	}
}

func renderField(sb *strings.Builder, key string, value interface{}, depth int) {
	switch v := value.(type) {
	case map[string]interface{}:
		indent(sb, depth)
		sb.WriteString(key)
		sb.WriteString(":\n")
		renderValue(sb, v, depth+1)
	case []interface{}:
		if isScalarSlice(v) {
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = scalarString(item)
			}
			indent(sb, depth)
			fmt.Fprintf(sb, "%s: %s\n", key, strings.Join(parts, ", "))
			return
		}
		indent(sb, depth)
		sb.WriteString(key)
		sb.WriteString(":\n")
		for _, item := range v {
			indent(sb, depth+1)
			sb.WriteString(renderScalarOrSummary(item))
			sb.WriteString("\n")
		}
	default:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s: %s\n", key, scalarString(value))
	}
}

// renderScalarOrSummary flattens one sequence element to a single line.
func renderScalarOrSummary(value interface{}) string {
	m, ok := value.(map[string]interface{})
	if !ok {
		return scalarString(value)
	}
	parts := make([]string, 0, len(m))
	for _, key := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s: %s", key, scalarString(m[key])))
	}
	return strings.Join(parts, " | ")
}

func isScalarSlice(items []interface{}) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]interface{}, []interface{}:
			return false
		}
	}
	return true
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []interface{}, map[string]interface{}:
		return renderScalarOrSummary(v)
	default:
		return fmt.Sprint(v)
	}
}

func decodeJSON(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func asMap(value interface{}) map[string]interface{} {
	m, _ := value.(map[string]interface{})
	return m
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func fieldStr(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	return scalarString(m[key])
}

func fieldNum(m map[string]interface{}, key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	default:
		return 0
	}
}

func numStr(n json.Number) string {
	if n == "" {
		return "0"
	}
	return n.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
