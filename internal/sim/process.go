package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"navwatch/internal/awareness"
	"navwatch/internal/navdata"
	"navwatch/internal/sensor"
)

// ProcessLog feeds sensor snapshots from r (one JSON object per line)
// through the awareness layer and writes each assessment. A delay > 0 paces
// the batches. Returns the number of processed snapshots.
func ProcessLog(r io.Reader, layer *awareness.Layer, vesselID string, writer AssessmentWriter, alertWriter AlertWriter, delay time.Duration) (int, error) {
	dec := json.NewDecoder(r)
	n := 0
	for {
		var snap sensor.Snapshot
		if err := dec.Decode(&snap); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}

		out, err := layer.Process(&snap)
		if err != nil {
			return n, err
		}
		if err := writer.WriteAssessment(navdata.NewAssessmentRow(vesselID, out)); err != nil {
			return n, err
		}
		if alertWriter != nil {
			for _, a := range out.Alerts {
				if err := alertWriter.WriteAlert(navdata.NewAlertRow(vesselID, a)); err != nil {
					return n, err
				}
			}
		}

		n++
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// ProcessLogFile opens a snapshot log file and processes its batches.
func ProcessLogFile(path string, layer *awareness.Layer, vesselID string, writer AssessmentWriter, alertWriter AlertWriter, delay time.Duration) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ProcessLog(f, layer, vesselID, writer, alertWriter, delay)
}
