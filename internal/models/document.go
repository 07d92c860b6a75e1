package models

// SourceDocument describes one manifesto PDF to ingest.
type SourceDocument struct {
	FilePath string `yaml:"file_path"`
	Party    string `yaml:"party"`
	Category string `yaml:"category"`
}

// Page is one physical page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded slice of cleaned manifesto text stored as one
// retrievable unit in the vector index. Page is nil when the originating
// page could not be determined.
type Chunk struct {
	ID       string
	Party    string
	Category string
	Source   string
	Page     *int
	Content  string
}

// Citation is a bounded quotation backing a party's stance. Page holds the
// page number as a string, or the "Unbekannt" sentinel when unknown.
type Citation struct {
	Text           string `json:"text"`
	Source         string `json:"source"`
	WahlprogramURL string `json:"wahlprogram_link,omitempty"`
	Page           string `json:"page"`
}

// PartyAnalysis is one party's reconciled stance on a statement.
type PartyAnalysis struct {
	Agreement   int        `json:"agreement"`
	Explanation string     `json:"explanation"`
	Citations   []Citation `json:"citations"`
}

// AnalysisResult maps canonical party keys to their analysis. A populated
// result always carries exactly the seven canonical keys; an empty map is
// the documented "no answer" outcome and is distinct from a failure.
type AnalysisResult map[string]PartyAnalysis
