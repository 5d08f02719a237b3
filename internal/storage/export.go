package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/takeoff/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Samples []dynamo.Sample `json:"samples"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, samples []dynamo.Sample) error {
	data := ExportData{
		RunMetadata: *meta,
		Samples:     samples,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(formatSample(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
