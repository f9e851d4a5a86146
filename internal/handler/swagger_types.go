package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// AnalyzeResponse is returned by a successful analysis. Analysis holds a
// financial analysis or an earnings analysis depending on AnalysisType.
type AnalyzeResponse struct {
	Success      bool        `json:"success" example:"true"`
	AnalysisType string      `json:"analysisType" example:"financial"`
	Filename     string      `json:"filename" example:"q4-results.pdf"`
	Analysis     interface{} `json:"analysis"`
	OCRAvailable bool        `json:"ocrAvailable" example:"true"`
	OCRFile      string      `json:"ocrFile,omitempty" example:"q4-results_primary-parser_1715678400000.txt"`
	Method       string      `json:"method" example:"primary-parser"`
	SessionID    string      `json:"sessionId" example:"3f5e9c1a-6a0b-4c1e-9d8e-2b7f4a1c0d9e"`
	Source       string      `json:"source" example:"model"`
	Provider     string      `json:"provider,omitempty" example:"groq"`
}

// NeedsReviewResponse is returned with 202 when no strategy produced usable text.
type NeedsReviewResponse struct {
	Success  bool   `json:"success" example:"false"`
	NeedsOCR bool   `json:"needsOcr" example:"true"`
	Filename string `json:"filename" example:"scan.pdf"`
	OCRFile  string `json:"ocrFile,omitempty" example:"scan_failed_1715678400000.txt"`
	Message  string `json:"message" example:"PDF extraction needs review"`
}

// ReadinessResponse reports optional capabilities.
type ReadinessResponse struct {
	Status       string   `json:"status" example:"ok"`
	OCRAvailable bool     `json:"ocr_available"`
	Providers    []string `json:"providers"`
	Degraded     bool     `json:"degraded"`
}
