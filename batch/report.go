package batch

import (
	"encoding/json"
	"os"
)

type FileResult struct {
	Name   string   `json:"name"`
	Output string   `json:"output,omitempty"`
	Size   int      `json:"size"`
	Status string   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

type BatchReport struct {
	Files     []FileResult `json:"files"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

func CreateBatchReport() *BatchReport {
	return &BatchReport{
		Files: []FileResult{},
	}
}

func (br *BatchReport) AddFile(result FileResult) {
	if result.Status == "passed" {
		br.Succeeded++
	} else {
		br.Failed++
	}
	br.Files = append(br.Files, result)
}

// Save writes the report as JSON to path.
func (br *BatchReport) Save(path string) error {
	b, err := json.MarshalIndent(br, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (fr *FileResult) SetStatus(success bool) {
	if success {
		fr.Status = "passed"
	} else {
		fr.Status = "failed"
	}
}

func (fr *FileResult) ErrorPrintLn(str string) {
	fr.Errors = append(fr.Errors, str)
}
